package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"ms-booking/internal/booking"
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

type DB struct {
	Bun *bun.DB
}

// lockedEvent loads the event row inside the transaction. On Postgres the
// row is taken FOR UPDATE so concurrent reservations on the same event
// serialize; SQLite has a single writer anyway.
func (d *DB) lockedEvent(ctx context.Context, tx bun.Tx, id string) (*models.Event, error) {
	var event models.Event
	q := tx.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1)
	if d.Bun.Dialect().Name() == dialect.PG {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// wrapStorageErr turns unexpected storage errors into PersistenceError while
// letting the engine's own error kinds pass through untouched.
func wrapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, booking.ErrEventNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrEmptySelection):
		return err
	}
	var (
		unavailable *booking.SeatsUnavailableError
		outOfBounds *booking.SeatOutOfBoundsError
		badLabel    *seatmap.InvalidLabelError
		persistence *booking.PersistenceError
	)
	if errors.As(err, &unavailable) || errors.As(err, &outOfBounds) ||
		errors.As(err, &badLabel) || errors.As(err, &persistence) {
		return err
	}
	return &booking.PersistenceError{Err: err}
}

// CommitReservation runs the read-check-mutate-persist sequence of one
// reservation attempt as a single transaction: load the event, hand it to
// apply, then write back the mutated event together with the new booking
// and its ledger rows. Any error from apply or from a write rolls the whole
// thing back, leaving the event exactly as it was.
func (d *DB) CommitReservation(ctx context.Context, eventID string, apply booking.ReservationApply) (*models.Booking, error) {
	var created *models.Booking
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		event, err := d.lockedEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		b, ledger, err := apply(event)
		if err != nil {
			return err
		}

		event.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model(event).
			Column("seat_map", "available_seats", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(b).Exec(ctx); err != nil {
			return err
		}
		if len(ledger) > 0 {
			if _, err := tx.NewInsert().Model(&ledger).Exec(ctx); err != nil {
				return err
			}
		}

		b.Seats = ledger
		created = b
		return nil
	})
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return created, nil
}

// CommitCancellation is the reverse unit of work: load the booking, its
// ledger rows and the event, hand all three to apply, then persist the
// restored seat map and the status flip atomically.
func (d *DB) CommitCancellation(ctx context.Context, bookingID string, apply booking.CancellationApply) (*models.Booking, error) {
	var cancelled *models.Booking
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var b models.Booking
		err := tx.NewSelect().
			Model(&b).
			Where("id = ?", bookingID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrBookingNotFound
			}
			return err
		}

		var ledger []models.BookingSeat
		if err := tx.NewSelect().
			Model(&ledger).
			Where("booking_id = ?", bookingID).
			Order("label").
			Scan(ctx); err != nil {
			return err
		}

		event, err := d.lockedEvent(ctx, tx, b.EventID)
		if err != nil {
			return err
		}

		if err := apply(&b, ledger, event); err != nil {
			return err
		}

		event.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model(event).
			Column("seat_map", "available_seats", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewUpdate().
			Model(&b).
			Column("status").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		b.Seats = ledger
		cancelled = &b
		return nil
	})
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return cancelled, nil
}

// ---------------- LEDGER QUERIES ----------------

// GetBookingByID → fetch one booking with its per-seat ledger rows
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := d.Bun.NewSelect().
		Model(&b).
		Relation("Seats").
		Where("booking.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, wrapStorageErr(err)
	}
	return &b, nil
}

// GetBookingsByUser → all bookings of one user, newest first
func (d *DB) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("Seats").
		Where("user_id = ?", userID).
		Order("booking_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return bookings, nil
}

// GetAllBookings → every booking, newest first
func (d *DB) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("Seats").
		Order("booking_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return bookings, nil
}

// GetEventByID → plain read for display, no locking
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrEventNotFound
		}
		return nil, wrapStorageErr(err)
	}
	return &event, nil
}
