package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

// ActivityPageSize is the number of activities per admin listing page.
const ActivityPageSize = 10

type ActivityService struct {
	repo   ports.ActivityRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewActivityService(repo ports.ActivityRepository, logger zerolog.Logger) *ActivityService {
	return &ActivityService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityService) Create(ctx context.Context, in ports.ActivityInput) (*domain.DailyActivity, error) {
	in.Department = strings.TrimSpace(in.Department)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Department == "" || in.Title == "" || in.Description == "" {
		return nil, domain.Invalid("Department, title and description are required")
	}

	now := s.now()
	if in.Date.IsZero() {
		in.Date = now
	}

	created, err := s.repo.Create(ctx, &domain.DailyActivity{
		Date:        in.Date,
		Department:  in.Department,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create daily activity")
		return nil, err
	}
	s.logger.Info().Str("activity_id", created.ID).Str("department", created.Department).Msg("daily activity created")
	return created, nil
}

// ListPage returns the 1-based page of activities, newest first. Pages below
// 1 are treated as the first page.
func (s *ActivityService) ListPage(ctx context.Context, page int) (*ports.ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.repo.List(ctx, (page-1)*ActivityPageSize, ActivityPageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.DailyActivity{}
	}
	return &ports.ActivityPage{
		Activities:  items,
		CurrentPage: page,
		TotalPages:  int((total + ActivityPageSize - 1) / ActivityPageSize),
	}, nil
}

func (s *ActivityService) ListPublic(ctx context.Context) ([]*domain.DailyActivity, error) {
	items, _, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.DailyActivity{}
	}
	return items, nil
}

func (s *ActivityService) Update(ctx context.Context, id string, patch ports.ActivityPatch) (*domain.DailyActivity, error) {
	for _, f := range []*string{patch.Department, patch.Title, patch.Description} {
		if f != nil {
			*f = strings.TrimSpace(*f)
			if *f == "" {
				return nil, domain.Invalid("Department, title and description cannot be empty")
			}
		}
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("activity_id", id).Msg("daily activity updated")
	return updated, nil
}

func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("activity_id", id).Msg("daily activity deleted")
	return nil
}
