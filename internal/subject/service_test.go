package subject

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

type fakeStore struct {
	latest  types.SubjectID
	created []*Subject
}

func (f *fakeStore) Create(_ context.Context, s *Subject) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeStore) LatestCode(_ context.Context) (types.SubjectID, error) {
	return f.latest, nil
}

func serviceAt(store Store, year int) *Service {
	s := NewService(store)
	s.now = func() time.Time {
		return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestEnrollFirstSubject(t *testing.T) {
	store := &fakeStore{}
	svc := serviceAt(store, 2025)

	subj, err := svc.Enroll(context.Background(), "")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if subj.Code != "25-001" {
		t.Errorf("Code = %q, want 25-001", subj.Code)
	}
	if subj.Status != StatusActive {
		t.Errorf("Status = %q, want active", subj.Status)
	}
	if len(store.created) != 1 {
		t.Errorf("store received %d creates, want 1", len(store.created))
	}
}

func TestEnrollIncrementsSequence(t *testing.T) {
	store := &fakeStore{latest: "25-041"}
	svc := serviceAt(store, 2025)

	subj, err := svc.Enroll(context.Background(), "")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if subj.Code != "25-042" {
		t.Errorf("Code = %q, want 25-042", subj.Code)
	}
}

func TestEnrollResetsOnYearRollover(t *testing.T) {
	store := &fakeStore{latest: "24-999"}
	svc := serviceAt(store, 2025)

	subj, err := svc.Enroll(context.Background(), "")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if subj.Code != "25-001" {
		t.Errorf("Code = %q, want 25-001 after rollover", subj.Code)
	}
}

func TestEnrollSequenceExhausted(t *testing.T) {
	store := &fakeStore{latest: "25-999"}
	svc := serviceAt(store, 2025)

	_, err := svc.Enroll(context.Background(), "")
	if !errors.Is(err, types.ErrSequenceExhausted) {
		t.Errorf("error = %v, want ErrSequenceExhausted", err)
	}
	if len(store.created) != 0 {
		t.Error("exhausted allocation still created a subject")
	}
}

func TestEnrollPropagatesStoreConflict(t *testing.T) {
	store := &conflictStore{}
	svc := serviceAt(store, 2025)

	_, err := svc.Enroll(context.Background(), "")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("error = %v, want conflict from store", err)
	}
}

type conflictStore struct{}

func (c *conflictStore) Create(_ context.Context, _ *Subject) error {
	return apperrors.Conflict("subject code already allocated")
}

func (c *conflictStore) LatestCode(_ context.Context) (types.SubjectID, error) {
	return "25-007", nil
}
