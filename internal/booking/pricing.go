package booking

import (
	"ms-booking/internal/models"
	"ms-booking/internal/seatmap"
)

// PriceOf resolves the price of a single seat from its current cell value.
// A cell tagged with a recognized section takes that section's price;
// everything else falls back to the event's default per-seat price. Must be
// called before the cell is overwritten with Booked, since booking discards
// the section tag from the map.
func PriceOf(cell seatmap.Cell, event *models.Event) float64 {
	if cell.Kind == seatmap.Section {
		if section, ok := event.SectionByID(cell.SectionID); ok {
			return section.Price
		}
	}
	return event.PricePerSeat
}
