package seatmap

import (
	"fmt"
)

// MaxRows caps the grid height addressable by single-letter seat labels.
// Row 0 is "A", row 25 is "Z"; the event service rejects taller layouts.
const MaxRows = 26

// InvalidLabelError reports a seat label the codec could not decode.
type InvalidLabelError struct {
	Label string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid seat label %q", e.Label)
}

// EncodeLabel formats a grid coordinate as a seat label, e.g. (0,0) is "A1".
func EncodeLabel(row, col int) (string, error) {
	if row < 0 || row >= MaxRows {
		return "", fmt.Errorf("row %d outside supported range 0..%d", row, MaxRows-1)
	}
	if col < 0 {
		return "", fmt.Errorf("column %d is negative", col)
	}
	return fmt.Sprintf("%c%d", 'A'+row, col+1), nil
}

// DecodeLabel parses a seat label back into a grid coordinate. It does not
// bounds-check against any particular event; that is the reservation
// engine's job.
func DecodeLabel(label string) (row, col int, err error) {
	if len(label) < 2 {
		return 0, 0, &InvalidLabelError{Label: label}
	}
	r := label[0]
	if r < 'A' || r > 'Z' {
		return 0, 0, &InvalidLabelError{Label: label}
	}
	suffix := label[1:]
	if len(suffix) > 9 {
		return 0, 0, &InvalidLabelError{Label: label}
	}
	n := 0
	for i := 0; i < len(suffix); i++ {
		d := suffix[i]
		if d < '0' || d > '9' {
			return 0, 0, &InvalidLabelError{Label: label}
		}
		n = n*10 + int(d-'0')
	}
	if n < 1 {
		return 0, 0, &InvalidLabelError{Label: label}
	}
	return int(r - 'A'), n - 1, nil
}
