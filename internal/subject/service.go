package subject

import (
	"context"
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Store is the persistence surface the enrollment service needs
type Store interface {
	Create(ctx context.Context, s *Subject) error
	LatestCode(ctx context.Context) (types.SubjectID, error)
}

// Service allocates subject codes and enrolls subjects. Code uniqueness
// is enforced by the store's unique constraint; the allocator itself
// holds no registry.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an enrollment service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Enroll allocates the next subject code and stores the new subject.
// The sequence continues within the current year and resets to 1 when
// the year rolls over or no subject exists yet.
func (s *Service) Enroll(ctx context.Context, notes string) (*Subject, error) {
	latest, err := s.store.LatestCode(ctx)
	if err != nil {
		return nil, err
	}

	code, err := types.NextSubjectIDAt(latest, s.now())
	if err != nil {
		// Sequence exhaustion: 999 subjects already enrolled this year
		return nil, errors.Wrap(err, "failed to allocate subject code")
	}

	subj := &Subject{
		Code:       code,
		EnrolledAt: s.now().UTC(),
		Status:     StatusActive,
		Notes:      notes,
	}

	if err := s.store.Create(ctx, subj); err != nil {
		return nil, err
	}

	metrics.RecordSubjectEnrolled()
	return subj, nil
}
