package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// NotificationRepo provides persistence for the `notifications` table.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification and populates the generated ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, message) VALUES (?,?,?)`,
		n.UserID, n.Type, n.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM notifications WHERE id = ?`, n.ID,
	).Scan(&n.CreatedAt)
}

// ListByUser returns all notifications for a user, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	return r.list(ctx,
		`SELECT id, user_id, type, message, is_read, created_at
		   FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListUnreadByUser returns only the unread notifications, newest first.
func (r *NotificationRepo) ListUnreadByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	return r.list(ctx,
		`SELECT id, user_id, type, message, is_read, created_at
		   FROM notifications WHERE user_id = ? AND is_read = 0 ORDER BY created_at DESC`, userID)
}

func (r *NotificationRepo) list(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`,
		userID).Scan(&n)
	return n, err
}

// MarkRead flags a single notification as read. The user_id guard keeps
// users from touching each other's rows.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`,
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read and
// returns the number updated.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`,
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a notification owned by the user.
func (r *NotificationRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// GetByID returns a single notification row.
func (r *NotificationRepo) GetByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, message, is_read, created_at FROM notifications WHERE id = ?`,
		id).Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
