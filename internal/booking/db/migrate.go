package db

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

// Migrate creates the booking ledger tables. Used for SQLite development
// and tests; production Postgres schemas come from the SQL migrations.
func Migrate(bunDB *bun.DB) {
	ctx := context.Background()

	if _, err := bunDB.NewCreateTable().Model((*models.Booking)(nil)).IfNotExists().Exec(ctx); err != nil {
		log.Fatalf("create bookings table failed: %v", err)
	}
	if _, err := bunDB.NewCreateTable().Model((*models.BookingSeat)(nil)).IfNotExists().Exec(ctx); err != nil {
		log.Fatalf("create booking_seats table failed: %v", err)
	}

	log.Println("✅ booking tables ready")
}
