package repository

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	original := &PaginationCursor{
		ID:        "contact-123",
		CreatedAt: time.Date(2025, time.June, 1, 12, 30, 0, 0, time.UTC),
	}

	encoded := encodeCursor(original)
	if encoded == "" {
		t.Fatal("encoded cursor should not be empty")
	}

	decoded, err := decodeCursor(encoded)
	if err != nil {
		t.Fatalf("decodeCursor failed: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID mismatch: got %q, want %q", decoded.ID, original.ID)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "not!!base64"},
		{name: "base64 but not json", input: "bm90LWpzb24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := decodeCursor(tt.input); err == nil {
				t.Error("expected error for invalid cursor")
			}
		})
	}
}

func TestMonthDayWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from time.Time
		days int
		want []string
	}{
		{
			name: "mid month",
			from: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			days: 2,
			want: []string{"0610", "0611", "0612"},
		},
		{
			name: "wraps year end",
			from: time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC),
			days: 3,
			want: []string{"1230", "1231", "0101", "0102"},
		},
		{
			name: "zero days is just today",
			from: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
			days: 0,
			want: []string{"0305"},
		},
		{
			name: "leap day covered in a non-leap year",
			from: time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC),
			days: 2,
			want: []string{"0227", "0228", "0229", "0301"},
		},
		{
			name: "leap day not duplicated in a leap year",
			from: time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC),
			days: 1,
			want: []string{"0228", "0229"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := monthDayWindow(tt.from, tt.days)
			if len(got) != len(tt.want) {
				t.Fatalf("length mismatch: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
