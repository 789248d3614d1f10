package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestOf(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	// 00:30 in Paris on Jan 2nd is still Jan 1st in UTC.
	got := Of(time.Date(2025, time.January, 2, 0, 30, 0, 0, paris))
	if want := New(2025, time.January, 1); got != want {
		t.Errorf("Of() = %s, want %s", got, want)
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-02", 1},
		{"2024-01-01", "2025-01-01", 366}, // leap year
		{"2025-01-01", "2026-01-01", 365},
		{"2025-03-01", "2025-02-01", -28},
	}
	for _, tc := range testCases {
		t.Run(tc.from+"_"+tc.to, func(t *testing.T) {
			if got := MustParse(tc.to).Sub(MustParse(tc.from)); got != tc.want {
				t.Errorf("Sub() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-7-1")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if d.String() != "2025-07-01" {
		t.Errorf("Parse() = %s, want 2025-07-01", d)
	}
	if _, err := Parse("07/01/2025"); err == nil {
		t.Error("Parse() expected an error for a US formatted date")
	}
}

func TestJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-02-03"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2025-02-03"` {
		t.Errorf("Marshal() = %s", b)
	}
}

func TestRange(t *testing.T) {
	r := Year(2025)
	if !r.Contains(New(2025, 12, 31)) || r.Contains(New(2026, 1, 1)) {
		t.Errorf("Year(2025) boundaries are wrong: %v", r)
	}
	if r.String() != "2025" {
		t.Errorf("String() = %q, want 2025", r.String())
	}
	if !(Range{}).IsZero() {
		t.Error("zero Range should be IsZero")
	}
}
