package seatmap

import (
	"encoding/json"
	"fmt"
)

// CellKind is the state of one position in the seat grid.
type CellKind int

const (
	// Gap is a hole in an irregular layout. Not a seat.
	Gap CellKind = iota
	// Stage marks cells covered by the stage. Not a seat.
	Stage
	// Available is an unbooked seat with default pricing.
	Available
	// Booked is a sold seat.
	Booked
	// Section is an unbooked seat that belongs to a pricing section.
	Section
)

// Cell is one addressable position in the seat map. SectionID is only
// meaningful when Kind is Section.
type Cell struct {
	Kind      CellKind
	SectionID string
}

// Bookable reports whether a reservation may transition this cell to Booked.
func (c Cell) Bookable() bool {
	return c.Kind == Available || c.Kind == Section
}

// Seat reports whether the cell counts as a seat at all (gaps and the stage
// do not).
func (c Cell) Seat() bool {
	return c.Kind != Gap && c.Kind != Stage
}

// The wire format matches the layout producer: null, "stage", "available",
// "booked", or any other token which is taken as a section id. Numeric
// section ids are normalized to their string form.
const (
	tokenStage     = "stage"
	tokenAvailable = "available"
	tokenBooked    = "booked"
)

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case Gap:
		return []byte("null"), nil
	case Stage:
		return json.Marshal(tokenStage)
	case Available:
		return json.Marshal(tokenAvailable)
	case Booked:
		return json.Marshal(tokenBooked)
	case Section:
		return json.Marshal(c.SectionID)
	}
	return nil, fmt.Errorf("seatmap: unknown cell kind %d", c.Kind)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{Kind: Gap}
		return nil
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		// Layout builders that key sections by number emit bare numbers.
		var n json.Number
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return fmt.Errorf("seatmap: invalid cell value %s", data)
		}
		token = n.String()
	}
	switch token {
	case tokenStage:
		*c = Cell{Kind: Stage}
	case tokenAvailable:
		*c = Cell{Kind: Available}
	case tokenBooked:
		*c = Cell{Kind: Booked}
	default:
		*c = Cell{Kind: Section, SectionID: token}
	}
	return nil
}
