package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

type ComplaintService struct {
	repo     ports.ComplaintRepository
	users    ports.UserRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewComplaintService(repo ports.ComplaintRepository, users ports.UserRepository, notifier ports.Notifier, logger zerolog.Logger) *ComplaintService {
	return &ComplaintService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create files a complaint for ownerID, who must be an existing citizen, and
// announces it once the insert has committed.
func (s *ComplaintService) Create(ctx context.Context, ownerID string, in ports.CreateComplaintInput) (*domain.Complaint, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Subcategory = strings.TrimSpace(in.Subcategory)
	in.Description = strings.TrimSpace(in.Description)
	if in.Category == "" || in.Subcategory == "" || in.Description == "" {
		return nil, domain.Invalid("All fields are required")
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}
	if owner.Role != domain.RoleUser {
		return nil, &domain.ForbiddenError{Reason: "Only users can file complaints"}
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Complaint{
		UserID:      owner.ID,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Description: in.Description,
		FileURL:     in.FileURL,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create complaint")
		return nil, err
	}

	s.logger.Info().Str("complaint_id", created.ID).Str("user_id", ownerID).Msg("complaint created")
	s.notifier.ComplaintCreated(ctx, created)
	return created, nil
}

// SetStatus persists a new status and, after the write returned, notifies
// realtime clients and the owner.
func (s *ComplaintService) SetStatus(ctx context.Context, id, status string) (*domain.ComplaintWithOwner, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.Invalid("Status is required")
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("Complaint ID missing")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrComplaintNotFound) {
			s.logger.Warn().Str("complaint_id", id).Msg("status update for unknown complaint")
		}
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, updated.UserID)
	if err != nil {
		// The status is committed; only the owner email depends on this lookup.
		s.logger.Warn().Err(err).Str("complaint_id", id).Str("user_id", updated.UserID).Msg("complaint owner lookup failed")
		owner = nil
	}

	s.logger.Info().Str("complaint_id", id).Str("status", status).Msg("complaint status updated")
	s.notifier.ComplaintStatusChanged(ctx, updated, owner)

	return &domain.ComplaintWithOwner{Complaint: *updated, Owner: domain.OwnerOf(owner)}, nil
}

func (s *ComplaintService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
	return s.repo.ListByOwner(ctx, ownerID, 0)
}

func (s *ComplaintService) ListAll(ctx context.Context) ([]*domain.ComplaintWithOwner, error) {
	return s.repo.ListAll(ctx)
}
