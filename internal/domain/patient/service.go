package patient

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSummary returns the pet with its owner.
func (s *Service) GetSummary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetOwner(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}
	sum := Summarize(p, o)
	return &sum, nil
}

// Summaries looks up several pets at once, ignoring duplicates.
func (s *Service) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	return s.repo.Summaries(ctx, uniq)
}
