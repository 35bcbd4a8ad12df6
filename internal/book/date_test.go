package book

import (
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := ParseDate("2020-05-01", "2006-01-02")
		if err != nil {
			t.Fatalf("ParseDate failed: %v", err)
		}
		if got := d.Format("January 2, 2006"); got != "May 1, 2020" {
			t.Errorf("Format = %q", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("May 2020", "2006-01-02")
		if err == nil || !strings.Contains(err.Error(), "cannot parse date 'May 2020' with format '2006-01-02'") {
			t.Errorf("got error %v", err)
		}
	})
}

func TestDateFormatPadsYear(t *testing.T) {
	d, err := ParseDate("0986-12-25", "2006-01-02")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"2006-01-02":      "0986-12-25",
		"January 2, 2006": "December 25, 0986",
		"2006":            "0986",
		"01/02":           "12/25",
	}
	for layout, want := range cases {
		if got := d.Format(layout); got != want {
			t.Errorf("Format(%q) = %q, want %q", layout, got, want)
		}
	}
}
