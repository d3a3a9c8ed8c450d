package types

import (
	"errors"
	"testing"
	"time"
)

// TestNewSubjectIDFormat tests zero-padding and year normalization
func TestNewSubjectIDFormat(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		sequence int
		want     SubjectID
	}{
		{"Two-digit year", 25, 7, "25-007"},
		{"Four-digit year", 2025, 7, "25-007"},
		{"Single-digit year", 5, 42, "05-042"},
		{"Max sequence", 25, 999, "25-999"},
		{"Century rollover", 2100, 1, "00-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSubjectID(tt.year, tt.sequence)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestNewSubjectIDValidation tests rejection of out-of-range components
func TestNewSubjectIDValidation(t *testing.T) {
	if _, err := NewSubjectID(-3, 1); !errors.Is(err, ErrInvalidYear) {
		t.Errorf("Expected ErrInvalidYear for negative year, got %v", err)
	}
	if _, err := NewSubjectID(25, 0); !errors.Is(err, ErrInvalidSequence) {
		t.Errorf("Expected ErrInvalidSequence for sequence 0, got %v", err)
	}
	if _, err := NewSubjectID(25, 1000); !errors.Is(err, ErrInvalidSequence) {
		t.Errorf("Expected ErrInvalidSequence for sequence 1000, got %v", err)
	}
}

// TestSubjectIDRoundTrip tests that Components inverts NewSubjectID
func TestSubjectIDRoundTrip(t *testing.T) {
	for _, year := range []int{0, 7, 25, 99} {
		for _, seq := range []int{1, 2, 499, 998, 999} {
			id, err := NewSubjectID(year, seq)
			if err != nil {
				t.Fatalf("NewSubjectID(%d, %d): %v", year, seq, err)
			}
			gotYear, gotSeq, ok := id.Components()
			if !ok {
				t.Fatalf("Components(%s): expected ok", id)
			}
			if gotYear != year || gotSeq != seq {
				t.Errorf("Components(%s) = (%d, %d), want (%d, %d)", id, gotYear, gotSeq, year, seq)
			}
		}
	}
}

// TestSubjectIDIsValid tests the validation boundary
func TestSubjectIDIsValid(t *testing.T) {
	tests := []struct {
		id    SubjectID
		valid bool
	}{
		{"25-001", true},
		{"25-999", true},
		{"00-001", true},
		{"25-000", false}, // regex passes, sequence is semantically invalid
		{"5-999", false},  // wrong width
		{"25-1000", false},
		{"2025-001", false},
		{"25_001", false},
		{"", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := tt.id.IsValid(); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

// TestCompareSubjectIDs tests field-level ordering
func TestCompareSubjectIDs(t *testing.T) {
	tests := []struct {
		name string
		a, b SubjectID
		want int
	}{
		{"Earlier year first", "24-999", "25-001", -1},
		{"Same year by sequence", "25-001", "25-002", -1},
		{"Equal", "25-010", "25-010", 0},
		{"Later year", "26-001", "25-999", 1},
		{"Invalid sorts after valid", "bogus", "25-001", 1},
		{"Valid sorts before invalid", "25-001", "bogus", -1},
		{"Two invalid compare equal", "bogus", "also-bogus", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareSubjectIDs(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareSubjectIDs(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestNextSubjectIDAt tests increment, year rollover, and exhaustion
func TestNextSubjectIDAt(t *testing.T) {
	in2025 := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Increment within same year", func(t *testing.T) {
		got, err := NextSubjectIDAt("25-007", in2025)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "25-008" {
			t.Errorf("Expected 25-008, got %s", got)
		}
	})

	t.Run("Year rollover resets sequence", func(t *testing.T) {
		// 24-999 is exhausted for 2024, but in 2025 the sequence
		// restarts rather than overflowing.
		got, err := NextSubjectIDAt("24-999", in2025)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "25-001" {
			t.Errorf("Expected 25-001, got %s", got)
		}
	})

	t.Run("Exhaustion within same year", func(t *testing.T) {
		_, err := NextSubjectIDAt("25-999", in2025)
		if !errors.Is(err, ErrSequenceExhausted) {
			t.Errorf("Expected ErrSequenceExhausted, got %v", err)
		}
	})

	t.Run("Invalid current starts fresh", func(t *testing.T) {
		got, err := NextSubjectIDAt("bogus", in2025)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "25-001" {
			t.Errorf("Expected 25-001, got %s", got)
		}
	})

	t.Run("Empty current starts fresh", func(t *testing.T) {
		got, err := NextSubjectIDAt("", in2025)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "25-001" {
			t.Errorf("Expected 25-001, got %s", got)
		}
	})
}
