package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// StringList is stored as a JSON column; SQLite has no native arrays.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("models: cannot scan %T into StringList", src)
}

// Booking is the durable record of a completed reservation. Created
// atomically with the seat-map mutation and immutable afterwards, except for
// the status flip on cancellation.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID            string     `bun:"id,pk" json:"id"`
	UserID        string     `bun:"user_id,notnull" json:"userId"`
	EventID       string     `bun:"event_id,notnull" json:"eventId"`
	SelectedSeats StringList `bun:"selected_seats,type:jsonb" json:"selectedSeats"`
	TotalSeats    int        `bun:"total_seats,notnull" json:"totalSeats"`
	TotalAmount   float64    `bun:"total_amount,notnull" json:"totalAmount"`
	Status        string     `bun:"status,notnull" json:"status"`
	BookingTime   time.Time  `bun:"booking_time,notnull" json:"bookingTime"`

	Seats []BookingSeat `bun:"rel:has-many,join:id=booking_id" json:"seats,omitempty"`
}

// BookingSeat is one seat of a booking with the price and section captured
// at booking time. The seat map overwrites a section tag with Booked, so
// this row is the only place section provenance survives.
type BookingSeat struct {
	bun.BaseModel `bun:"table:booking_seats"`

	ID        string  `bun:"id,pk" json:"id"`
	BookingID string  `bun:"booking_id,notnull" json:"bookingId"`
	EventID   string  `bun:"event_id,notnull" json:"eventId"`
	Label     string  `bun:"label,notnull" json:"label"`
	SectionID string  `bun:"section_id,nullzero" json:"sectionId,omitempty"`
	Price     float64 `bun:"price,notnull" json:"price"`
}

// BookingWithEvent pairs a booking with the display fields of its event,
// for the populated responses the API returns.
type BookingWithEvent struct {
	Booking
	Event *Event `json:"event,omitempty"`
}
