package db

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

// Migrate creates the events table. Used for SQLite development and tests;
// production Postgres schemas come from the SQL migrations.
func Migrate(bunDB *bun.DB) {
	ctx := context.Background()

	if _, err := bunDB.NewCreateTable().Model((*models.Event)(nil)).IfNotExists().Exec(ctx); err != nil {
		log.Fatalf("create events table failed: %v", err)
	}

	log.Println("✅ events table ready")
}
