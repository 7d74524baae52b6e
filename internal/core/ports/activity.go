package ports

import (
	"context"
	"time"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// ActivityRepository defines persistence for daily activities.
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.DailyActivity) (*domain.DailyActivity, error)
	// List returns activities ordered by date descending. limit <= 0 means no limit.
	List(ctx context.Context, skip, limit int) ([]*domain.DailyActivity, int64, error)
	Update(ctx context.Context, id string, patch ActivityPatch) (*domain.DailyActivity, error)
	Delete(ctx context.Context, id string) error
}

// ActivityInput carries the fields of a daily activity. A zero Date means "now".
type ActivityInput struct {
	Date        time.Time
	Department  string
	Title       string
	Description string
	Image       string
	CreatedBy   string
}

// ActivityPatch carries an edit; nil fields are left unchanged.
type ActivityPatch struct {
	Date        *time.Time
	Department  *string
	Title       *string
	Description *string
	Image       *string
}

// ActivityPage is one page of the admin listing.
type ActivityPage struct {
	Activities  []*domain.DailyActivity
	CurrentPage int
	TotalPages  int
}

type ActivityService interface {
	Create(ctx context.Context, in ActivityInput) (*domain.DailyActivity, error)
	ListPage(ctx context.Context, page int) (*ActivityPage, error)
	ListPublic(ctx context.Context) ([]*domain.DailyActivity, error)
	Update(ctx context.Context, id string, patch ActivityPatch) (*domain.DailyActivity, error)
	Delete(ctx context.Context, id string) error
}
