package book

import (
	"fmt"
	"strings"
	"time"
)

const yearLayout = "2006"

// Date is a book date value, parsed with a schema-declared input layout
// and formatted back out with the schema's output layout.
type Date struct {
	t time.Time
}

// ParseDate parses value with the given reference-time layout.
func ParseDate(value, layout string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("cannot parse date '%s' with format '%s'", value, layout)
	}
	return Date{t: t}, nil
}

// Format renders the date with the given layout. The year is always
// zero-padded to four digits, so years below 1000 format the same on every
// platform regardless of how the layout handles them.
func (d Date) Format(layout string) string {
	year := fmt.Sprintf("%04d", d.t.Year())
	parts := strings.Split(layout, yearLayout)
	for i, part := range parts {
		parts[i] = d.t.Format(part)
	}
	return strings.Join(parts, year)
}

// Equal reports whether two dates are the same instant.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}
