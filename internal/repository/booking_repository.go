package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// BookingRepo provides persistence for the `bookings` table. Status
// transitions are conditional on the current status so that concurrent
// decisions on the same booking cannot both succeed.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, cupo_id, requester_id, seats, total_cents, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.OfferID, &b.RequesterID, &b.Seats, &b.TotalCents,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated ID and timestamps. The
// caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (cupo_id, requester_id, seats, total_cents, status) VALUES (?,?,?,?,?)`,
		b.OfferID, b.RequesterID, b.Seats, b.TotalCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a single booking row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetForUpdateTx loads a booking with a row lock inside the provided
// transaction. Used by the reservation store to serialize transitions
// and the paired seat restore on the same booking.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// UpdateStatusTx moves a booking from one status to another within the
// provided transaction. The WHERE guard on the current status means a
// lost race (or a repeated call) affects zero rows and surfaces as
// ErrStateConflict rather than silently overwriting a terminal state.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.BookingStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStateConflict
	}
	return nil
}

// HasActive reports whether the user already holds a PENDING or
// CONFIRMED booking on the cupo. Used as the duplicate-booking guard.
func (r *BookingRepo) HasActive(ctx context.Context, offerID, requesterID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE cupo_id = ? AND requester_id = ? AND status IN (?,?)`,
		offerID, requesterID, model.BookingPending, model.BookingConfirmed).Scan(&n)
	return n > 0, err
}

// ActiveRequesters returns the distinct users holding a PENDING or
// CONFIRMED booking on the cupo. Used to fan out offer-change
// notifications.
func (r *BookingRepo) ActiveRequesters(ctx context.Context, offerID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT requester_id FROM bookings WHERE cupo_id = ? AND status IN (?,?)`,
		offerID, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BookingDetail extends a booking with cupo and counterpart fields for
// display. It is returned by the listing queries so clients do not
// have to fetch each cupo separately.
type BookingDetail struct {
	model.Booking
	Destination   string    `json:"destination"`
	MeetingPoint  string    `json:"meeting_point"`
	DepartureTime time.Time `json:"departure_time"`
	DriverID      uint64    `json:"driver_id"`
	DriverName    string    `json:"driver_name"`
	RequesterName string    `json:"requester_name"`
}

const bookingDetailQuery = `SELECT b.id, b.cupo_id, b.requester_id, b.seats, b.total_cents, b.status,
       b.created_at, b.updated_at,
       c.destination, c.meeting_point, c.departure_time, c.driver_id,
       d.name, p.name
  FROM bookings b
  JOIN cupos c ON c.id = b.cupo_id
  JOIN users d ON d.id = c.driver_id
  JOIN users p ON p.id = b.requester_id`

func scanBookingDetail(rows *sql.Rows) (*BookingDetail, error) {
	var d BookingDetail
	err := rows.Scan(&d.ID, &d.OfferID, &d.RequesterID, &d.Seats, &d.TotalCents, &d.Status,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Destination, &d.MeetingPoint, &d.DepartureTime, &d.DriverID,
		&d.DriverName, &d.RequesterName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByRequester returns the user's bookings with cupo details,
// newest first.
func (r *BookingRepo) ListByRequester(ctx context.Context, requesterID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailQuery+` WHERE b.requester_id = ? ORDER BY b.created_at DESC`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

// ListByOffer returns all bookings on a cupo with details, newest
// first. Ownership of the cupo is checked by the caller.
func (r *BookingRepo) ListByOffer(ctx context.Context, offerID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailQuery+` WHERE b.cupo_id = ? ORDER BY b.created_at DESC`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}
