package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-booking/internal/event"
	"ms-booking/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateEvent → insert new event
func (d *DB) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := d.Bun.NewInsert().Model(e).Exec(ctx)
	return err
}

// GetEventByID → fetch one event by its ID
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := d.Bun.NewSelect().
		Model(&e).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListEvents → all events, earliest date first
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent → full-row update; a seat-map change is a replacement, never a merge
func (d *DB) UpdateEvent(ctx context.Context, e *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(e).
		WherePK().
		Exec(ctx)
	return err
}

// DeleteEvent → delete an event by ID
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
