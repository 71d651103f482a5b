package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/repository"
)

// FavoriteHandler serves the saved-cupos endpoints.
type FavoriteHandler struct {
	Favorites *repository.FavoriteRepo
	Offers    *repository.OfferRepo
}

func NewFavoriteHandler(favorites *repository.FavoriteRepo, offers *repository.OfferRepo) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favorites, Offers: offers}
}

// Add saves an active cupo to the caller's favorites.
func (h *FavoriteHandler) Add(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Offers.GetActiveByID(ctx, id); err != nil {
		return respondErr(c, err)
	}
	actor := actorFrom(c)
	if err := h.Favorites.Add(ctx, actor.UserID, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Remove drops a cupo from the caller's favorites.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actor := actorFrom(c)
	if err := h.Favorites.Remove(c.Request().Context(), actor.UserID, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's favourited cupos that are still active.
func (h *FavoriteHandler) List(c echo.Context) error {
	actor := actorFrom(c)
	offers, err := h.Favorites.ListOffers(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toOfferViews(offers)})
}

// Check reports whether the cupo is in the caller's favorites.
func (h *FavoriteHandler) Check(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actor := actorFrom(c)
	found, err := h.Favorites.Exists(c.Request().Context(), actor.UserID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorite": found})
}
