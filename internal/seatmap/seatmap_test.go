package seatmap_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-booking/internal/seatmap"
)

func TestGenerate(t *testing.T) {
	m := seatmap.Generate(2, 3)
	assert.Equal(t, 2, len(m))
	assert.Equal(t, 3, len(m[0]))
	assert.Equal(t, 6, m.CountSeats())
	assert.Equal(t, 6, m.CountBookable())

	cell, ok := m.At(1, 2)
	assert.True(t, ok)
	assert.Equal(t, seatmap.Available, cell.Kind)
}

func TestAtOutOfBounds(t *testing.T) {
	m := seatmap.Generate(2, 2)

	_, ok := m.At(2, 0)
	assert.False(t, ok)

	_, ok = m.At(0, 2)
	assert.False(t, ok)

	_, ok = m.At(-1, 0)
	assert.False(t, ok)
}

func TestSetMutatesCell(t *testing.T) {
	m := seatmap.Generate(2, 2)
	m.Set(0, 1, seatmap.Cell{Kind: seatmap.Booked})

	cell, ok := m.At(0, 1)
	assert.True(t, ok)
	assert.Equal(t, seatmap.Booked, cell.Kind)
	assert.Equal(t, 3, m.CountBookable())
	assert.Equal(t, 4, m.CountSeats())
}

func TestCellBookable(t *testing.T) {
	assert.True(t, seatmap.Cell{Kind: seatmap.Available}.Bookable())
	assert.True(t, seatmap.Cell{Kind: seatmap.Section, SectionID: "vip"}.Bookable())
	assert.False(t, seatmap.Cell{Kind: seatmap.Booked}.Bookable())
	assert.False(t, seatmap.Cell{Kind: seatmap.Stage}.Bookable())
	assert.False(t, seatmap.Cell{Kind: seatmap.Gap}.Bookable())
}

func TestSeatMapJSONWireFormat(t *testing.T) {
	raw := `[["available","booked"],[null,"stage"],["1","vip"]]`

	var m seatmap.SeatMap
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, seatmap.Available, m[0][0].Kind)
	assert.Equal(t, seatmap.Booked, m[0][1].Kind)
	assert.Equal(t, seatmap.Gap, m[1][0].Kind)
	assert.Equal(t, seatmap.Stage, m[1][1].Kind)
	assert.Equal(t, seatmap.Section, m[2][0].Kind)
	assert.Equal(t, "1", m[2][0].SectionID)
	assert.Equal(t, "vip", m[2][1].SectionID)

	// Gaps and the stage are not seats; everything else is
	assert.Equal(t, 4, m.CountSeats())
	assert.Equal(t, 3, m.CountBookable())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestSeatMapBareNumberSections(t *testing.T) {
	// Layout builders that key sections numerically emit bare numbers
	var m seatmap.SeatMap
	require.NoError(t, json.Unmarshal([]byte(`[[1,2,"available"]]`), &m))

	assert.Equal(t, seatmap.Section, m[0][0].Kind)
	assert.Equal(t, "1", m[0][0].SectionID)
	assert.Equal(t, "2", m[0][1].SectionID)
}

func TestSeatMapValueScanRoundTrip(t *testing.T) {
	m := seatmap.Generate(2, 2)
	m.Set(0, 0, seatmap.Cell{Kind: seatmap.Section, SectionID: "vip"})
	m.Set(1, 1, seatmap.Cell{Kind: seatmap.Booked})

	v, err := m.Value()
	require.NoError(t, err)

	var got seatmap.SeatMap
	require.NoError(t, got.Scan(v))
	assert.Equal(t, m, got)
}
