package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

var ErrNotFound = errors.New("event not found")

type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// CreateParams carries the admin's event definition. CustomSeatMap is
// optional; when absent a plain all-available Rows×Columns grid is
// generated.
type CreateParams struct {
	Title         string
	Description   string
	Location      string
	Venue         string
	Date          time.Time
	Time          string
	PosterImage   string
	Category      string
	Rows          int
	Columns       int
	PricePerSeat  float64
	CustomSeatMap seatmap.SeatMap
	Sections      models.SectionList
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Event, error) {
	if p.Rows < 1 || p.Columns < 1 {
		return nil, errors.New("rows and columns must be positive")
	}
	// Single-letter seat labels cap the grid height
	if p.Rows > seatmap.MaxRows {
		return nil, fmt.Errorf("rows must not exceed %d", seatmap.MaxRows)
	}
	if p.PricePerSeat < 0 {
		return nil, errors.New("price per seat must not be negative")
	}

	m := p.CustomSeatMap
	if m == nil {
		m = seatmap.Generate(p.Rows, p.Columns)
	} else {
		if len(m) != p.Rows {
			return nil, fmt.Errorf("seat map has %d rows, expected %d", len(m), p.Rows)
		}
		for i, row := range m {
			if len(row) != p.Columns {
				return nil, fmt.Errorf("seat map row %d has %d columns, expected %d", i, len(row), p.Columns)
			}
		}
	}

	category := p.Category
	if category == "" {
		category = "other"
	}

	event := &models.Event{
		ID:             uuid.NewString(),
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		Venue:          p.Venue,
		Date:           p.Date,
		Time:           p.Time,
		PosterImage:    p.PosterImage,
		Category:       category,
		Status:         "upcoming",
		Rows:           p.Rows,
		Columns:        p.Columns,
		SeatMap:        m,
		Sections:       p.Sections,
		PricePerSeat:   p.PricePerSeat,
		TotalSeats:     m.CountSeats(),
		AvailableSeats: m.CountBookable(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// List returns all events sorted by date ascending.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// UpdateParams applies a partial update; nil fields stay untouched.
type UpdateParams struct {
	Title        *string
	Description  *string
	Location     *string
	Venue        *string
	Date         *time.Time
	Time         *string
	PosterImage  *string
	Category     *string
	Status       *string
	Rows         *int
	Columns      *int
	PricePerSeat *float64
	Sections     *models.SectionList
}

// Update edits event fields. Changing rows or columns regenerates the seat
// map as a fresh all-available grid and resets both seat counters, which
// discards any booked-seat state on the map. Existing bookings keep their
// ledger rows but lose the linkage to cells.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		event.Title = *p.Title
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.Venue != nil {
		event.Venue = *p.Venue
	}
	if p.Date != nil {
		event.Date = *p.Date
	}
	if p.Time != nil {
		event.Time = *p.Time
	}
	if p.PosterImage != nil {
		event.PosterImage = *p.PosterImage
	}
	if p.Category != nil {
		event.Category = *p.Category
	}
	if p.Status != nil {
		event.Status = *p.Status
	}
	if p.PricePerSeat != nil {
		event.PricePerSeat = *p.PricePerSeat
	}
	if p.Sections != nil {
		event.Sections = *p.Sections
	}

	if p.Rows != nil || p.Columns != nil {
		rows := event.Rows
		columns := event.Columns
		if p.Rows != nil {
			rows = *p.Rows
		}
		if p.Columns != nil {
			columns = *p.Columns
		}
		if rows < 1 || columns < 1 {
			return nil, errors.New("rows and columns must be positive")
		}
		if rows > seatmap.MaxRows {
			return nil, fmt.Errorf("rows must not exceed %d", seatmap.MaxRows)
		}
		event.Rows = rows
		event.Columns = columns
		event.SeatMap = seatmap.Generate(rows, columns)
		event.TotalSeats = rows * columns
		event.AvailableSeats = rows * columns
	}

	event.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.DB.GetEventByID(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteEvent(ctx, id)
}

// SeatMap returns just the layout portion of an event for seat pickers.
func (s *Service) SeatMap(ctx context.Context, id string) (seatmap.SeatMap, int, int, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, 0, 0, err
	}
	return event.SeatMap, event.Rows, event.Columns, nil
}
