package book

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeSortDisplays(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []SortDisplay
	}{
		{"null", `null`, nil},
		{"bare string", `"Author One"`, []SortDisplay{NewSortDisplay("Author One", "Author One")}},
		{
			"object",
			`{"sort": "One, Author", "display": "Author One"}`,
			[]SortDisplay{NewSortDisplay("One, Author", "Author One")},
		},
		{
			"mixed list sorted",
			`[{"sort": "Two, Author", "display": "Author Two"}, "Author One"]`,
			[]SortDisplay{
				NewSortDisplay("Author One", "Author One"),
				NewSortDisplay("Two, Author", "Author Two"),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeSortDisplays(json.RawMessage(tc.raw), "authors", "metadata.json")
			if err != nil {
				t.Fatalf("decodeSortDisplays failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeSortDisplaysErrors(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			"duplicate sort",
			`[{"sort": "One, Author", "display": "Author One"}, {"sort": "One, Author", "display": "A. One"}]`,
			"duplicate 'authors' data 'sort=One, Author' found in 'metadata.json'",
		},
		{
			"duplicate display",
			`[{"sort": "One, Author", "display": "Author One"}, {"sort": "One, A.", "display": "Author One"}]`,
			"duplicate 'authors' data 'display=Author One' found in 'metadata.json'",
		},
		{
			"missing sort",
			`{"display": "Author One"}`,
			"invalid 'authors' data in 'metadata.json'",
		},
		{
			"wrong type",
			`42`,
			"invalid 'authors' data in 'metadata.json'",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeSortDisplays(json.RawMessage(tc.raw), "authors", "metadata.json")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got error %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestSortDisplayKey(t *testing.T) {
	sd := NewSortDisplay("One, Author", "Author One")
	if sd.HasKey() {
		t.Error("fresh value should have no key")
	}

	keyed := sd.WithKey("7")
	if !keyed.HasKey() || keyed.Key() != "7" {
		t.Errorf("WithKey result: hasKey=%v key=%q", keyed.HasKey(), keyed.Key())
	}
	if sd.HasKey() {
		t.Error("WithKey must not mutate the receiver")
	}

	defer func() {
		if recover() == nil {
			t.Error("Key on unkeyed value should panic")
		}
	}()
	sd.Key()
}

func TestSortDisplayOrderingAndPair(t *testing.T) {
	a := NewSortDisplay("A", "z")
	b := NewSortDisplay("B", "a")
	if !a.Less(b) || b.Less(a) {
		t.Error("ordering should be driven by sort first")
	}

	c := NewSortDisplay("A", "a")
	if !c.Less(a) {
		t.Error("equal sorts should fall back to display")
	}

	if a.Pair() != (Pair{Sort: "A", Display: "z"}) {
		t.Errorf("Pair = %+v", a.Pair())
	}
}
