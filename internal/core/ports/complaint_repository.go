package ports

import (
	"context"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// ComplaintRepository defines persistence for complaints.
type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint) (*domain.Complaint, error)
	// UpdateStatus sets the status and returns the committed document.
	// Unknown or malformed ids yield domain.ErrComplaintNotFound.
	UpdateStatus(ctx context.Context, id, status string) (*domain.Complaint, error)
	// ListByOwner returns the owner's complaints, newest first. limit <= 0 means no limit.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Complaint, error)
	// ListAll returns every complaint with its owner populated, newest first.
	ListAll(ctx context.Context) ([]*domain.ComplaintWithOwner, error)
}
