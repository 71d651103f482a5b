package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// OfferRepo provides persistence for the `cupos` table. Seat
// arithmetic is exposed only as conditional ...Tx statements so that
// the check-and-decrement always happens atomically inside the same
// transaction as the booking row it pairs with.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo returns an OfferRepo bound to the given database.
func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// that span this repository and BookingRepo.
func (r *OfferRepo) DB() *sql.DB { return r.db }

const offerColumns = `id, driver_id, destination, description, meeting_point,
       total_seats, available_seats, departure_time, price_cents, status, active,
       created_at, updated_at`

func scanOffer(row interface{ Scan(...any) error }) (*model.Offer, error) {
	var o model.Offer
	err := row.Scan(
		&o.ID, &o.DriverID, &o.Destination, &o.Description, &o.MeetingPoint,
		&o.TotalSeats, &o.AvailableSeats, &o.DepartureTime, &o.PriceCents, &o.Status, &o.Active,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new cupo and populates the generated ID and the
// database-assigned timestamps on the provided record.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	const q = `INSERT INTO cupos
	           (driver_id, destination, description, meeting_point, total_seats,
	            available_seats, departure_time, price_cents, status, active)
	           VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		o.DriverID, o.Destination, o.Description, o.MeetingPoint, o.TotalSeats,
		o.AvailableSeats, o.DepartureTime.UTC(), o.PriceCents, o.Status, o.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	created, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *created
	return nil
}

// GetByID returns a cupo regardless of its active flag. Callers that
// must exclude soft-deleted offers should use GetActiveByID.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (*model.Offer, error) {
	o, err := scanOffer(r.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM cupos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	return o, err
}

// GetActiveByID returns a cupo only when it has not been soft-deleted.
func (r *OfferRepo) GetActiveByID(ctx context.Context, id uint64) (*model.Offer, error) {
	o, err := scanOffer(r.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM cupos WHERE id = ? AND active = 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	return o, err
}

// OfferFilter carries the optional search criteria for listing cupos.
// Zero values mean "no filter". Only active offers are ever returned.
type OfferFilter struct {
	Destination    string
	DriverID       uint64
	MinSeats       uint8
	MinPriceCents  uint32
	MaxPriceCents  uint32
	DepartureAfter time.Time
	Status         model.OfferStatus
}

// Search lists active cupos matching the filter, ordered by departure
// time ascending so the next rides to leave come first.
func (r *OfferRepo) Search(ctx context.Context, f OfferFilter) ([]model.Offer, error) {
	var (
		conds = []string{"active = 1"}
		args  []any
	)
	if f.Destination != "" {
		conds = append(conds, "destination = ?")
		args = append(args, f.Destination)
	}
	if f.DriverID != 0 {
		conds = append(conds, "driver_id = ?")
		args = append(args, f.DriverID)
	}
	if f.MinSeats != 0 {
		conds = append(conds, "available_seats >= ?")
		args = append(args, f.MinSeats)
	}
	if f.MinPriceCents != 0 {
		conds = append(conds, "price_cents >= ?")
		args = append(args, f.MinPriceCents)
	}
	if f.MaxPriceCents != 0 {
		conds = append(conds, "price_cents <= ?")
		args = append(args, f.MaxPriceCents)
	}
	if !f.DepartureAfter.IsZero() {
		conds = append(conds, "departure_time >= ?")
		args = append(args, f.DepartureAfter.UTC())
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + offerColumns + ` FROM cupos WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY departure_time ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
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

// ListByDriver returns all active cupos posted by a driver, newest
// first.
func (r *OfferRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM cupos WHERE driver_id = ? AND active = 1 ORDER BY created_at DESC`,
		driverID)
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

// Update persists the mutable fields of a cupo. Immutable fields
// (driver, timestamps) are never written.
func (r *OfferRepo) Update(ctx context.Context, o *model.Offer) error {
	const q = `UPDATE cupos
	           SET destination=?, description=?, meeting_point=?, total_seats=?,
	               available_seats=?, departure_time=?, price_cents=?, status=?, active=?
	           WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		o.Destination, o.Description, o.MeetingPoint, o.TotalSeats,
		o.AvailableSeats, o.DepartureTime.UTC(), o.PriceCents, o.Status, o.Active,
		o.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// Cancel marks a cupo CANCELLED and inactive. The status guard in the
// WHERE clause makes a second cancel a state conflict instead of a
// silent no-op.
func (r *OfferRepo) Cancel(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cupos SET status=?, active=0 WHERE id=? AND status<>?`,
		model.OfferCancelled, id, model.OfferCancelled)
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

// Delete removes the row permanently. Used only under the hard
// deletion policy (non-production environments).
func (r *OfferRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cupos WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// Deactivate performs a soft delete by clearing the active flag; the
// row and its bookings remain for auditing.
func (r *OfferRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cupos SET active=0 WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// ReserveSeatsTx atomically decrements available seats within the
// provided transaction. The guards in the WHERE clause are the
// authoritative availability check: when no row matches, either the
// seats ran out or the cupo stopped being bookable, and
// ErrSeatsUnavailable is returned. This conditional form is what makes
// concurrent bookings safe — a plain read-check-write would race.
func (r *OfferRepo) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, offerID uint64, seats uint8) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cupos
		 SET available_seats = available_seats - ?
		 WHERE id = ? AND available_seats >= ? AND status = ? AND active = 1`,
		seats, offerID, seats, model.OfferAvailable)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSeatsUnavailable
	}
	return nil
}

// RestoreSeatsTx returns previously held seats to the cupo within the
// provided transaction. It pairs with a booking leaving a seat-holding
// status; the conservation invariant guarantees the result never
// exceeds total_seats.
func (r *OfferRepo) RestoreSeatsTx(ctx context.Context, tx *sql.Tx, offerID uint64, seats uint8) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cupos SET available_seats = available_seats + ? WHERE id = ?`,
		seats, offerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}
