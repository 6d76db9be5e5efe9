package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

// ReservationApply mutates a freshly loaded event inside the reservation
// transaction and returns the ledger rows to insert alongside it. Returning
// an error rolls the whole transaction back.
type ReservationApply func(event *models.Event) (*models.Booking, []models.BookingSeat, error)

// CancellationApply reverses a booking's seats on the event inside the
// cancellation transaction.
type CancellationApply func(b *models.Booking, seats []models.BookingSeat, event *models.Event) error

type DBLayer interface {
	CommitReservation(ctx context.Context, eventID string, apply ReservationApply) (*models.Booking, error)
	CommitCancellation(ctx context.Context, bookingID string, apply CancellationApply) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

// EventLocker serializes reservation attempts per event across service
// instances. The database transaction is still the source of truth; the
// lock just keeps concurrent attempts from piling up on the same row.
type EventLocker interface {
	LockEvent(eventID, token string) (bool, error)
	UnlockEvent(eventID, token string) error
}

type Publisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingCancelled(booking models.Booking) error
}

type Service struct {
	DB    DBLayer
	Lock  EventLocker
	Kafka Publisher
}

func NewService(db DBLayer, lock EventLocker, kafka Publisher) *Service {
	return &Service{DB: db, Lock: lock, Kafka: kafka}
}

type decodedSeat struct {
	label string
	row   int
	col   int
}

// decodeSelection validates the requested labels and decodes them to grid
// coordinates. Duplicates are detected on coordinates, not raw labels, so
// "A1" and "A01" count as the same seat.
func decodeSelection(seatLabels []string) ([]decodedSeat, error) {
	if len(seatLabels) == 0 {
		return nil, ErrEmptySelection
	}
	seats := make([]decodedSeat, 0, len(seatLabels))
	seen := make(map[[2]int]bool, len(seatLabels))
	for _, label := range seatLabels {
		row, col, err := seatmap.DecodeLabel(label)
		if err != nil {
			return nil, err
		}
		key := [2]int{row, col}
		if seen[key] {
			return nil, ErrEmptySelection
		}
		seen[key] = true
		seats = append(seats, decodedSeat{label: label, row: row, col: col})
	}
	return seats, nil
}

// Reserve books the requested seats for the user on the given event. The
// whole seat set is booked atomically or not at all: any unavailable seat
// fails the attempt with SeatsUnavailableError listing every offender, and
// the event is left untouched.
func (s *Service) Reserve(ctx context.Context, eventID, userID string, seatLabels []string) (*models.Booking, error) {
	seats, err := decodeSelection(seatLabels)
	if err != nil {
		return nil, err
	}

	if s.Lock != nil {
		token := uuid.NewString()
		ok, err := s.Lock.LockEvent(eventID, token)
		if err != nil {
			return nil, &PersistenceError{Err: fmt.Errorf("event lock: %w", err)}
		}
		if !ok {
			return nil, &PersistenceError{Err: fmt.Errorf("event %s is busy with another reservation", eventID)}
		}
		defer func() {
			if err := s.Lock.UnlockEvent(eventID, token); err != nil {
				fmt.Printf("Failed to unlock event %s: %v\n", eventID, err)
			}
		}()
	}

	created, err := s.DB.CommitReservation(ctx, eventID, func(event *models.Event) (*models.Booking, []models.BookingSeat, error) {
		// Check availability across the whole set before touching anything
		cells := make([]seatmap.Cell, len(seats))
		var unavailable []string
		for i, seat := range seats {
			cell, ok := event.SeatMap.At(seat.row, seat.col)
			if !ok {
				return nil, nil, &SeatOutOfBoundsError{Label: seat.label, Row: seat.row, Col: seat.col}
			}
			if !cell.Bookable() {
				unavailable = append(unavailable, seat.label)
				continue
			}
			cells[i] = cell
		}
		if len(unavailable) > 0 {
			return nil, nil, &SeatsUnavailableError{Seats: unavailable}
		}

		bookingID := uuid.NewString()
		labels := make(models.StringList, len(seats))
		ledger := make([]models.BookingSeat, 0, len(seats))
		total := 0.0
		for i, seat := range seats {
			labels[i] = seat.label
			// Price is read from the pre-mutation cell value
			price := PriceOf(cells[i], event)
			total += price

			// Defensive: a seat that somehow turned Booked since the check
			// is skipped instead of double-decrementing
			if cur, _ := event.SeatMap.At(seat.row, seat.col); cur.Kind != seatmap.Booked {
				event.SeatMap.Set(seat.row, seat.col, seatmap.Cell{Kind: seatmap.Booked})
				event.AvailableSeats--
			}

			sectionID := ""
			if cells[i].Kind == seatmap.Section {
				sectionID = cells[i].SectionID
			}
			ledger = append(ledger, models.BookingSeat{
				ID:        uuid.NewString(),
				BookingID: bookingID,
				EventID:   event.ID,
				Label:     seat.label,
				SectionID: sectionID,
				Price:     price,
			})
		}

		b := &models.Booking{
			ID:            bookingID,
			UserID:        userID,
			EventID:       event.ID,
			SelectedSeats: labels,
			TotalSeats:    len(labels),
			TotalAmount:   total,
			Status:        models.BookingConfirmed,
			BookingTime:   time.Now().UTC(),
		}
		return b, ledger, nil
	})
	if err != nil {
		return nil, err
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCreated(*created); err != nil {
			fmt.Printf("Kafka publish error (booking created): %v\n", err)
		}
	}
	return created, nil
}

// Cancel reverses a confirmed booking: every booked seat goes back to its
// pre-booking state (section tag restored from the ledger), availableSeats
// climbs accordingly and the booking flips to cancelled.
func (s *Service) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	cancelled, err := s.DB.CommitCancellation(ctx, bookingID, func(b *models.Booking, seats []models.BookingSeat, event *models.Event) error {
		if b.Status == models.BookingCancelled {
			return ErrAlreadyCancelled
		}
		for _, seat := range seats {
			row, col, err := seatmap.DecodeLabel(seat.Label)
			if err != nil {
				return fmt.Errorf("ledger seat %s: %w", seat.Label, err)
			}
			cur, ok := event.SeatMap.At(row, col)
			if !ok || cur.Kind != seatmap.Booked {
				// Map was regenerated since booking; nothing to restore
				continue
			}
			restored := seatmap.Cell{Kind: seatmap.Available}
			if seat.SectionID != "" {
				restored = seatmap.Cell{Kind: seatmap.Section, SectionID: seat.SectionID}
			}
			event.SeatMap.Set(row, col, restored)
			event.AvailableSeats++
		}
		b.Status = models.BookingCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCancelled(*cancelled); err != nil {
			fmt.Printf("Kafka publish error (booking cancelled): %v\n", err)
		}
	}
	return cancelled, nil
}

// GetBooking returns one booking with its per-seat ledger rows.
func (s *Service) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.DB.GetBookingByID(ctx, id)
}

// GetBookingWithEvent resolves the event's display fields alongside the
// booking.
func (s *Service) GetBookingWithEvent(ctx context.Context, id string) (*models.BookingWithEvent, error) {
	b, err := s.DB.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.DB.GetEventByID(ctx, b.EventID)
	if err != nil {
		if !errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		// Event was deleted after booking; return the booking alone
		event = nil
	}
	return &models.BookingWithEvent{Booking: *b, Event: event}, nil
}

// GetUserBookings returns the user's bookings, newest first.
func (s *Service) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.DB.GetBookingsByUser(ctx, userID)
}

// GetAllBookings returns every booking, newest first.
func (s *Service) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	return s.DB.GetAllBookings(ctx)
}
