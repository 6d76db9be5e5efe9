package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-booking/internal/event"
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

type fakeEventDB struct {
	events map[string]*models.Event
}

func newFakeEventDB() *fakeEventDB {
	return &fakeEventDB{events: make(map[string]*models.Event)}
}

func (f *fakeEventDB) CreateEvent(_ context.Context, e *models.Event) error {
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventDB) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, event.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventDB) ListEvents(_ context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEventDB) UpdateEvent(_ context.Context, e *models.Event) error {
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventDB) DeleteEvent(_ context.Context, id string) error {
	delete(f.events, id)
	return nil
}

func baseParams() event.CreateParams {
	return event.CreateParams{
		Title:        "Jazz Evening",
		Date:         time.Now().Add(72 * time.Hour),
		Rows:         3,
		Columns:      4,
		PricePerSeat: 80,
	}
}

func TestCreateGeneratesSeatMap(t *testing.T) {
	svc := event.NewService(newFakeEventDB())

	e, err := svc.Create(context.Background(), baseParams())
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "upcoming", e.Status)
	assert.Equal(t, "other", e.Category)
	assert.Len(t, e.SeatMap, 3)
	assert.Len(t, e.SeatMap[0], 4)
	assert.Equal(t, 12, e.TotalSeats)
	assert.Equal(t, 12, e.AvailableSeats)
}

func TestCreateCustomSeatMapCountsOnlySeats(t *testing.T) {
	svc := event.NewService(newFakeEventDB())

	// 2x3 layout with a gap and a stage cell; neither counts as a seat
	m := seatmap.Generate(2, 3)
	m.Set(0, 0, seatmap.Cell{Kind: seatmap.Gap})
	m.Set(0, 1, seatmap.Cell{Kind: seatmap.Stage})
	m.Set(1, 0, seatmap.Cell{Kind: seatmap.Section, SectionID: "vip"})
	m.Set(1, 1, seatmap.Cell{Kind: seatmap.Booked})

	p := baseParams()
	p.Rows = 2
	p.Columns = 3
	p.CustomSeatMap = m

	e, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 4, e.TotalSeats)     // booked cell is still a seat
	assert.Equal(t, 3, e.AvailableSeats) // but not bookable
}

func TestCreateRejectsBadDimensions(t *testing.T) {
	svc := event.NewService(newFakeEventDB())
	ctx := context.Background()

	p := baseParams()
	p.Rows = 0
	_, err := svc.Create(ctx, p)
	assert.Error(t, err)

	p = baseParams()
	p.Rows = seatmap.MaxRows + 1
	_, err = svc.Create(ctx, p)
	assert.Error(t, err)

	p = baseParams()
	p.PricePerSeat = -1
	_, err = svc.Create(ctx, p)
	assert.Error(t, err)

	// Custom map must match the declared grid
	p = baseParams()
	p.CustomSeatMap = seatmap.Generate(2, 4)
	_, err = svc.Create(ctx, p)
	assert.Error(t, err)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := event.NewService(newFakeEventDB())
	ctx := context.Background()

	e, err := svc.Create(ctx, baseParams())
	require.NoError(t, err)

	title := "Jazz Evening (rescheduled)"
	price := 95.0
	got, err := svc.Update(ctx, e.ID, event.UpdateParams{Title: &title, PricePerSeat: &price})
	require.NoError(t, err)

	assert.Equal(t, title, got.Title)
	assert.Equal(t, 95.0, got.PricePerSeat)
	// Untouched fields survive
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, 12, got.TotalSeats)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestUpdateResizeRegeneratesSeatMap(t *testing.T) {
	svc := event.NewService(newFakeEventDB())
	ctx := context.Background()

	e, err := svc.Create(ctx, baseParams())
	require.NoError(t, err)
	e.SeatMap.Set(0, 0, seatmap.Cell{Kind: seatmap.Booked})

	rows := 5
	got, err := svc.Update(ctx, e.ID, event.UpdateParams{Rows: &rows})
	require.NoError(t, err)

	assert.Equal(t, 5, got.Rows)
	assert.Equal(t, 4, got.Columns)
	assert.Equal(t, 20, got.TotalSeats)
	assert.Equal(t, 20, got.AvailableSeats)
	cell, _ := got.SeatMap.At(0, 0)
	assert.Equal(t, seatmap.Available, cell.Kind)
}

func TestDeleteUnknownEvent(t *testing.T) {
	svc := event.NewService(newFakeEventDB())
	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestSeatMapAccessor(t *testing.T) {
	svc := event.NewService(newFakeEventDB())
	ctx := context.Background()

	e, err := svc.Create(ctx, baseParams())
	require.NoError(t, err)

	m, rows, columns, err := svc.SeatMap(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, columns)
	assert.Len(t, m, 3)
}
