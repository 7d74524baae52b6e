package ports

import (
	"context"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// CreateComplaintInput carries the fields of a new complaint. FileURL is the
// relative URL of an already stored attachment, if any.
type CreateComplaintInput struct {
	Category    string
	Subcategory string
	Description string
	FileURL     string
}

type ComplaintService interface {
	Create(ctx context.Context, ownerID string, in CreateComplaintInput) (*domain.Complaint, error)
	SetStatus(ctx context.Context, id, status string) (*domain.ComplaintWithOwner, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Complaint, error)
	ListAll(ctx context.Context) ([]*domain.ComplaintWithOwner, error)
}
