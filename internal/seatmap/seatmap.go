package seatmap

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SeatMap is the 2D seating layout of an event. It is stored as a JSON
// column, so it satisfies driver.Valuer and sql.Scanner.
type SeatMap [][]Cell

// Generate builds a fresh all-available grid.
func Generate(rows, columns int) SeatMap {
	m := make(SeatMap, rows)
	for i := range m {
		row := make([]Cell, columns)
		for j := range row {
			row[j] = Cell{Kind: Available}
		}
		m[i] = row
	}
	return m
}

// At returns the cell at the given coordinate. The second return value is
// false when the coordinate is outside the grid.
func (m SeatMap) At(row, col int) (Cell, bool) {
	if row < 0 || row >= len(m) {
		return Cell{}, false
	}
	if col < 0 || col >= len(m[row]) {
		return Cell{}, false
	}
	return m[row][col], true
}

// Set overwrites the cell at the given coordinate. Out-of-bounds coordinates
// are ignored; callers are expected to have bounds-checked via At.
func (m SeatMap) Set(row, col int, c Cell) {
	if row < 0 || row >= len(m) || col < 0 || col >= len(m[row]) {
		return
	}
	m[row][col] = c
}

// CountSeats counts cells that are seats (everything except gaps and the
// stage). This is the event's totalSeats at creation time.
func (m SeatMap) CountSeats() int {
	n := 0
	for _, row := range m {
		for _, c := range row {
			if c.Seat() {
				n++
			}
		}
	}
	return n
}

// CountBookable counts cells still in a bookable state, section-tagged seats
// included. This is the event's availableSeats.
func (m SeatMap) CountBookable() int {
	n := 0
	for _, row := range m {
		for _, c := range row {
			if c.Bookable() {
				n++
			}
		}
	}
	return n
}

func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *SeatMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("seatmap: cannot scan %T into SeatMap", src)
}
