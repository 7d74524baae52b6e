package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

// Realtime event names.
const (
	EventNewComplaint     = "newComplaint"
	EventComplaintUpdated = "complaintUpdated"
	EventStatusNotice     = "complaintStatusNotice"
)

type NewComplaintPayload struct {
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ComplaintUpdatedPayload struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
}

type StatusNoticePayload struct {
	ComplaintID string `json:"complaintId"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// hook is one post-commit side effect.
type hook struct {
	name string
	run  func()
}

// NotificationService fans complaint events out to realtime clients and the
// owner's mailbox. It is invoked only after the triggering write committed.
type NotificationService struct {
	hub   ports.Broadcaster
	conns ports.ConnectionLookup
	mail  ports.MailQueue
	guard ports.NotificationGuard
	log   zerolog.Logger
}

// NewNotificationService wires the dispatcher. guard may be nil, in which
// case every status change notifies.
func NewNotificationService(
	hub ports.Broadcaster,
	conns ports.ConnectionLookup,
	mail ports.MailQueue,
	guard ports.NotificationGuard,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{hub: hub, conns: conns, mail: mail, guard: guard, log: log}
}

func (s *NotificationService) ComplaintCreated(ctx context.Context, c *domain.Complaint) {
	s.runHooks(c.ID, hook{name: "broadcast_new", run: func() {
		s.hub.Broadcast(EventNewComplaint, NewComplaintPayload{
			UserID:      c.UserID,
			Category:    c.Category,
			Subcategory: c.Subcategory,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}})
}

func (s *NotificationService) ComplaintStatusChanged(ctx context.Context, c *domain.Complaint, owner *domain.User) {
	if !s.firstDelivery(ctx, c) {
		s.log.Debug().Str("complaint_id", c.ID).Str("status", c.Status).Msg("duplicate status notification skipped")
		return
	}

	hooks := []hook{{name: "broadcast_update", run: func() {
		s.hub.Broadcast(EventComplaintUpdated, ComplaintUpdatedPayload{ComplaintID: c.ID, Status: c.Status})
	}}}

	if owner != nil {
		hooks = append(hooks, hook{name: "owner_notice", run: func() {
			s.noticeOwner(c, owner)
		}})
		if owner.Email != "" {
			hooks = append(hooks, hook{name: "owner_email", run: func() {
				if !s.mail.Enqueue(statusEmail(c, owner)) {
					s.log.Warn().Str("complaint_id", c.ID).Str("to", owner.Email).Msg("status email dropped")
				}
			}})
		}
	}

	s.runHooks(c.ID, hooks...)
}

func (s *NotificationService) noticeOwner(c *domain.Complaint, owner *domain.User) {
	if s.conns == nil {
		return
	}
	connID, ok := s.conns.Lookup(owner.ID)
	if !ok {
		return
	}
	s.hub.SendTo(connID, EventStatusNotice, StatusNoticePayload{
		ComplaintID: c.ID,
		Category:    c.Category,
		Status:      c.Status,
		Message:     fmt.Sprintf("Your complaint under category %q has been updated to status: %q.", c.Category, c.Status),
	})
}

// firstDelivery consults the guard, keyed by the write's revision. Writes
// without a revision and guard failures never suppress delivery.
func (s *NotificationService) firstDelivery(ctx context.Context, c *domain.Complaint) bool {
	if s.guard == nil || c.Revision == "" {
		return true
	}
	key := c.ID + ":" + c.Revision
	first, err := s.guard.First(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("complaint_id", c.ID).Msg("notification guard failed, notifying anyway")
		return true
	}
	return first
}

// runHooks executes hooks in order. A panic in one hook is logged and does
// not prevent the remaining hooks from running.
func (s *NotificationService) runHooks(complaintID string, hooks ...hook) {
	for _, h := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Str("complaint_id", complaintID).
						Str("hook", h.name).
						Interface("panic", r).
						Msg("notification hook failed")
				}
			}()
			h.run()
		}()
	}
}

func statusEmail(c *domain.Complaint, owner *domain.User) domain.Email {
	return domain.Email{
		To:      owner.Email,
		Subject: "Complaint Status Updated: " + c.Category,
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour complaint under category %q has been updated to status: %q.\n\nThank you for using our service.",
			owner.FirstName, c.Category, c.Status,
		),
	}
}
