package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/booking"
	"ms-booking/internal/booking/db"
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	// Single connection keeps every in-memory query on the same database
	// and serializes concurrent transactions
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Event)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Booking)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.BookingSeat)(nil)))

	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}
}

func seedEvent(t *testing.T, d *db.DB, event *models.Event) {
	t.Helper()
	_, err := d.Bun.NewInsert().Model(event).Exec(context.Background())
	require.NoError(t, err)
}

func sampleEvent() *models.Event {
	sm := seatmap.Generate(2, 3)
	sm.Set(0, 0, seatmap.Cell{Kind: seatmap.Section, SectionID: "vip"})
	return &models.Event{
		ID:             "event1",
		Title:          "Stadium Night",
		Date:           time.Now().Add(48 * time.Hour),
		Rows:           2,
		Columns:        3,
		SeatMap:        sm,
		Sections:       models.SectionList{{ID: "vip", Name: "VIP", Price: 250}},
		PricePerSeat:   100,
		TotalSeats:     6,
		AvailableSeats: 6,
		CreatedAt:      time.Now(),
	}
}

func TestCommitReservationPersistsEverything(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, sampleEvent())
	svc := booking.NewService(d, nil, nil)
	ctx := context.Background()

	b, err := svc.Reserve(ctx, "event1", "user1", []string{"A1", "B3"})
	require.NoError(t, err)
	assert.Equal(t, 350.0, b.TotalAmount) // vip 250 + default 100

	// Event row reflects the mutation
	event, err := d.GetEventByID(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 4, event.AvailableSeats)
	cell, _ := event.SeatMap.At(0, 0)
	assert.Equal(t, seatmap.Booked, cell.Kind)

	// Booking row and ledger rows round-trip with the relation
	got, err := d.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"A1", "B3"}, got.SelectedSeats)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	require.Len(t, got.Seats, 2)
	bySeat := map[string]models.BookingSeat{}
	for _, s := range got.Seats {
		bySeat[s.Label] = s
	}
	assert.Equal(t, "vip", bySeat["A1"].SectionID)
	assert.Equal(t, 250.0, bySeat["A1"].Price)
	assert.Equal(t, "", bySeat["B3"].SectionID)
	assert.Equal(t, 100.0, bySeat["B3"].Price)
}

func TestCommitReservationRollsBackOnApplyError(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, sampleEvent())
	svc := booking.NewService(d, nil, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "event1", "user1", []string{"A2"})
	require.NoError(t, err)

	// Overlapping set fails, and the free seat in it stays untouched
	_, err = svc.Reserve(ctx, "event1", "user2", []string{"A2", "B1"})
	var unavailable *booking.SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.Seats)

	event, err := d.GetEventByID(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 5, event.AvailableSeats)
	cell, _ := event.SeatMap.At(1, 0)
	assert.Equal(t, seatmap.Available, cell.Kind)

	bookings, err := d.GetAllBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestCommitReservationUnknownEvent(t *testing.T) {
	d := setupTestDB(t)
	svc := booking.NewService(d, nil, nil)

	_, err := svc.Reserve(context.Background(), "ghost", "user1", []string{"A1"})
	assert.ErrorIs(t, err, booking.ErrEventNotFound)
}

func TestCommitCancellationRestoresEvent(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, sampleEvent())
	svc := booking.NewService(d, nil, nil)
	ctx := context.Background()

	b, err := svc.Reserve(ctx, "event1", "user1", []string{"A1", "A2"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	event, err := d.GetEventByID(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 6, event.AvailableSeats)
	cell, _ := event.SeatMap.At(0, 0)
	assert.Equal(t, seatmap.Section, cell.Kind)
	assert.Equal(t, "vip", cell.SectionID)
	cell, _ = event.SeatMap.At(0, 1)
	assert.Equal(t, seatmap.Available, cell.Kind)

	// Status flip is persisted
	got, err := d.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	_, err = svc.Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)
}

func TestCommitCancellationUnknownBooking(t *testing.T) {
	d := setupTestDB(t)
	svc := booking.NewService(d, nil, nil)

	_, err := svc.Cancel(context.Background(), "ghost")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestGetBookingsByUserNewestFirst(t *testing.T) {
	d := setupTestDB(t)
	event := sampleEvent()
	seedEvent(t, d, event)
	ctx := context.Background()

	older := &models.Booking{
		ID: "b1", UserID: "user1", EventID: event.ID,
		SelectedSeats: models.StringList{"A2"}, TotalSeats: 1, TotalAmount: 100,
		Status: models.BookingConfirmed, BookingTime: time.Now().Add(-time.Hour),
	}
	newer := &models.Booking{
		ID: "b2", UserID: "user1", EventID: event.ID,
		SelectedSeats: models.StringList{"A3"}, TotalSeats: 1, TotalAmount: 100,
		Status: models.BookingConfirmed, BookingTime: time.Now(),
	}
	other := &models.Booking{
		ID: "b3", UserID: "user2", EventID: event.ID,
		SelectedSeats: models.StringList{"B1"}, TotalSeats: 1, TotalAmount: 100,
		Status: models.BookingConfirmed, BookingTime: time.Now(),
	}
	for _, b := range []*models.Booking{older, newer, other} {
		_, err := d.Bun.NewInsert().Model(b).Exec(ctx)
		require.NoError(t, err)
	}

	got, err := d.GetBookingsByUser(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b2", got[0].ID)
	assert.Equal(t, "b1", got[1].ID)

	all, err := d.GetAllBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestConcurrentReservationsOneWinner(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, sampleEvent())
	svc := booking.NewService(d, nil, nil)

	const attempts = 6
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), "event1", "user", []string{"B2"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var unavailable *booking.SeatsUnavailableError
		require.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, successes)

	event, err := d.GetEventByID(context.Background(), "event1")
	require.NoError(t, err)
	assert.Equal(t, 5, event.AvailableSeats)
}
