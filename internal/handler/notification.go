package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/repository"
	"github.com/cupoapp/cupo-backend/internal/ws"
)

// NotificationHandler serves the stored notifications and the live
// WebSocket channel.
type NotificationHandler struct {
	Repo *repository.NotificationRepo
	Hub  *ws.Hub
}

func NewNotificationHandler(repo *repository.NotificationRepo, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{Repo: repo, Hub: hub}
}

type notificationView struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationViews(items []model.Notification) []notificationView {
	out := make([]notificationView, 0, len(items))
	for _, n := range items {
		out = append(out, notificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

// List returns all of the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	actor := actorFrom(c)
	items, err := h.Repo.ListByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toNotificationViews(items)})
}

// Unread returns only the caller's unread notifications.
func (h *NotificationHandler) Unread(c echo.Context) error {
	actor := actorFrom(c)
	items, err := h.Repo.ListUnreadByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toNotificationViews(items)})
}

// UnreadCount returns the caller's unread notification count, used for
// the badge in the client.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor := actorFrom(c)
	n, err := h.Repo.CountUnread(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actor := actorFrom(c)
	if err := h.Repo.MarkRead(c.Request().Context(), id, actor.UserID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor := actorFrom(c)
	n, err := h.Repo.MarkAllRead(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actor := actorFrom(c)
	if err := h.Repo.Delete(c.Request().Context(), id, actor.UserID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization headers on WebSocket dials from
	// every client, so origins are not restricted here; the JWT
	// middleware in front of this route is the actual gate.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Connect upgrades the request to a WebSocket session registered in
// the hub. The server only pushes; inbound frames are drained to
// detect the close.
func (h *NotificationHandler) Connect(c echo.Context) error {
	actor := actorFrom(c)
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	session := h.Hub.Register(actor.UserID, conn)
	go func() {
		defer h.Hub.Unregister(actor.UserID, session)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}
