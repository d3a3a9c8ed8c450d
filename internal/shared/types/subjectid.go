package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SubjectID is the anonymized code that identifies a support recipient.
// Format: YY-NNN where YY is the two-digit enrollment year and NNN is a
// per-year sequence from 001 to 999. The code carries no personal data;
// it is the only identity ever attached to assessment records.
//
// The sequence space restarts every calendar year, so yearly volumes
// under 999 never collide. Uniqueness within a year is the store's job:
// this type only generates, validates, compares and increments codes.
type SubjectID string

const (
	// MinSequence and MaxSequence bound the per-year sequence component.
	MinSequence = 1
	MaxSequence = 999
)

var subjectIDRegex = regexp.MustCompile(`^\d{2}-\d{3}$`)

var (
	ErrInvalidYear       = errors.New("subject id: year out of range")
	ErrInvalidSequence   = errors.New("subject id: sequence out of range")
	ErrSequenceExhausted = errors.New("subject id: sequence exhausted for year")
)

// NewSubjectID builds a subject code from a year and a sequence number.
// The year may be given as either two digits (25) or four digits (2025);
// four-digit years are reduced modulo 100.
func NewSubjectID(year, sequence int) (SubjectID, error) {
	if year > 99 {
		year = year % 100
	}
	if year < 0 || year > 99 {
		return "", ErrInvalidYear
	}
	if sequence < MinSequence || sequence > MaxSequence {
		return "", ErrInvalidSequence
	}
	return SubjectID(fmt.Sprintf("%02d-%03d", year, sequence)), nil
}

// NewSubjectIDForCurrentYear builds a subject code for the current
// calendar year.
func NewSubjectIDForCurrentYear(sequence int) (SubjectID, error) {
	return NewSubjectID(time.Now().Year(), sequence)
}

// IsValid reports whether the code is well-formed. The regex alone would
// accept a 000 sequence, so the parsed sequence is checked as well.
func (id SubjectID) IsValid() bool {
	_, _, ok := id.Components()
	return ok
}

// Components returns the year and sequence encoded in the code.
// ok is false for any malformed or out-of-range code; this never panics.
func (id SubjectID) Components() (year, sequence int, ok bool) {
	s := string(id)
	if !subjectIDRegex.MatchString(s) {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(s[:2])
	sequence, _ = strconv.Atoi(s[3:])
	if sequence < MinSequence || sequence > MaxSequence {
		return 0, 0, false
	}
	return year, sequence, true
}

// String returns the string representation
func (id SubjectID) String() string {
	return string(id)
}

// IsZero checks if the code is empty
func (id SubjectID) IsZero() bool {
	return id == ""
}

// CompareSubjectIDs orders codes by (year, sequence). Invalid codes sort
// after all valid ones; two invalid codes compare equal. The comparison
// is defined on the parsed fields rather than the raw strings so it
// stays correct if the component widths ever change.
func CompareSubjectIDs(a, b SubjectID) int {
	ay, as, aok := a.Components()
	by, bs, bok := b.Components()

	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	if ay != by {
		if ay < by {
			return -1
		}
		return 1
	}
	if as != bs {
		if as < bs {
			return -1
		}
		return 1
	}
	return 0
}

// NextSubjectID returns the code following current as of the wall clock.
func NextSubjectID(current SubjectID) (SubjectID, error) {
	return NextSubjectIDAt(current, time.Now())
}

// NextSubjectIDAt returns the code following current as of now.
// An invalid current code starts a fresh sequence for now's year. A
// current code from an earlier year resets the sequence to 1 for now's
// year: sequence numbers are deliberately recycled per year. Within the
// same year the sequence increments, failing with ErrSequenceExhausted
// past 999.
func NextSubjectIDAt(current SubjectID, now time.Time) (SubjectID, error) {
	nowYear := now.Year() % 100

	year, sequence, ok := current.Components()
	if !ok || year != nowYear {
		return NewSubjectID(nowYear, MinSequence)
	}
	if sequence >= MaxSequence {
		return "", ErrSequenceExhausted
	}
	return NewSubjectID(year, sequence+1)
}
