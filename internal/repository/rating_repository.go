package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// RatingRepo provides persistence for the `ratings` table. The unique
// index on (booking_id, rater_id) enforces one rating per participant
// per trip at the database level.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts a rating. A duplicate on the (booking_id, rater_id)
// index yields ErrRatingExists.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ratings (booking_id, rater_id, ratee_id, stars, comment) VALUES (?,?,?,?,?)`,
		rt.BookingID, rt.RaterID, rt.RateeID, rt.Stars, rt.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRatingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM ratings WHERE id = ?`, rt.ID,
	).Scan(&rt.CreatedAt)
}

// ListForUser returns all ratings received by a user, newest first.
func (r *RatingRepo) ListForUser(ctx context.Context, rateeID uint64) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, rater_id, ratee_id, stars, comment, created_at
		   FROM ratings WHERE ratee_id = ? ORDER BY created_at DESC`, rateeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]model.Rating, 0)
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.BookingID, &rt.RaterID, &rt.RateeID,
			&rt.Stars, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// AverageForUser returns the mean star rating a user has received and
// the number of ratings behind it. A user with no ratings gets (0, 0).
func (r *RatingRepo) AverageForUser(ctx context.Context, rateeID uint64) (float64, int, error) {
	var (
		avg sql.NullFloat64
		n   int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(stars), COUNT(*) FROM ratings WHERE ratee_id = ?`,
		rateeID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, n, nil
}
