package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-booking/internal/seatmap"
)

// Section is a named group of cells sharing a price, used for tiered-pricing
// venues. An empty section list means uniform pricing.
type Section struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Color string  `json:"color"`
	Shape string  `json:"shape"`
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Price float64         `json:"price"`
		Color string          `json:"color"`
		Shape string          `json:"shape"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	// Section ids arrive as strings or bare numbers depending on the layout
	// builder; normalize to the string token used in seat map cells.
	var id string
	if len(aux.ID) > 0 {
		if err := json.Unmarshal(aux.ID, &id); err != nil {
			var n json.Number
			if numErr := json.Unmarshal(aux.ID, &n); numErr != nil {
				return fmt.Errorf("models: invalid section id %s", aux.ID)
			}
			id = n.String()
		}
	}
	*s = Section{ID: id, Name: aux.Name, Price: aux.Price, Color: aux.Color, Shape: aux.Shape}
	return nil
}

// SectionList is stored as a JSON column.
type SectionList []Section

func (l SectionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *SectionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("models: cannot scan %T into SectionList", src)
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	Location    string    `bun:"location" json:"location"`
	Venue       string    `bun:"venue" json:"venue"`
	Date        time.Time `bun:"date,notnull" json:"date"`
	Time        string    `bun:"time" json:"time"`
	PosterImage string    `bun:"poster_image" json:"posterImage"`
	Category    string    `bun:"category" json:"category"`
	Status      string    `bun:"status" json:"status"`

	Rows         int             `bun:"rows,notnull" json:"rows"`
	Columns      int             `bun:"columns,notnull" json:"columns"`
	SeatMap      seatmap.SeatMap `bun:"seat_map,type:jsonb" json:"seatMap"`
	Sections     SectionList     `bun:"sections,type:jsonb" json:"sections"`
	PricePerSeat float64         `bun:"price_per_seat,notnull" json:"pricePerSeat"`

	// TotalSeats is fixed at creation; only AvailableSeats moves as seats
	// are booked and cancelled.
	TotalSeats     int `bun:"total_seats,notnull" json:"totalSeats"`
	AvailableSeats int `bun:"available_seats,notnull" json:"availableSeats"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// SectionByID looks up a pricing section by the id token carried in a cell.
func (e *Event) SectionByID(id string) (*Section, bool) {
	for i := range e.Sections {
		if e.Sections[i].ID == id {
			return &e.Sections[i], true
		}
	}
	return nil, false
}
