package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// FavoriteRepo provides persistence for the `favorites` table. The
// unique index on (user_id, cupo_id) keeps the same cupo from being
// saved twice.
type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add saves a cupo to the user's favorites. A duplicate yields
// ErrFavoriteExists.
func (r *FavoriteRepo) Add(ctx context.Context, userID, offerID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, cupo_id) VALUES (?,?)`, userID, offerID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrFavoriteExists
	}
	return err
}

// Remove deletes a favorite owned by the user.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, offerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND cupo_id = ?`, userID, offerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListOffers returns the still-active cupos the user has favourited,
// soonest departure first.
func (r *FavoriteRepo) ListOffers(ctx context.Context, userID uint64) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.driver_id, c.destination, c.description, c.meeting_point,
		        c.total_seats, c.available_seats, c.departure_time, c.price_cents, c.status, c.active,
		        c.created_at, c.updated_at
		   FROM favorites f
		   JOIN cupos c ON c.id = f.cupo_id
		  WHERE f.user_id = ? AND c.active = 1
		  ORDER BY c.departure_time ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	offers := make([]model.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// Exists reports whether the user has already favourited the cupo.
func (r *FavoriteRepo) Exists(ctx context.Context, userID, offerID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND cupo_id = ?`,
		userID, offerID).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return n > 0, nil
}
