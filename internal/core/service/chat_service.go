package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

const chatListLimit = 5

const (
	replyDefault      = "Sorry, I didn't understand that. Try asking about your complaints or daily activities."
	replyNoComplaints = "You have no complaints."
	replyNoActivities = "No recent activities available."
	replyHowToFile    = "To file a complaint, go to the 'File Complaint' section in the portal and fill in the details."
	replyLookupFailed = "Oops! Something went wrong while fetching your data."
)

// ChatService answers keyword-matched questions about a user's complaints
// and recent public activities.
type ChatService struct {
	complaints ports.ComplaintRepository
	activities ports.ActivityRepository
	log        zerolog.Logger
}

func NewChatService(complaints ports.ComplaintRepository, activities ports.ActivityRepository, log zerolog.Logger) *ChatService {
	return &ChatService{complaints: complaints, activities: activities, log: log}
}

func (s *ChatService) Reply(ctx context.Context, userID, message string) string {
	msg := strings.ToLower(message)

	var (
		reply string
		err   error
	)
	switch {
	case strings.Contains(msg, "how to file complaint"):
		reply = replyHowToFile
	case strings.Contains(msg, "complaint"), strings.Contains(msg, "status"):
		reply, err = s.latestComplaints(ctx, userID)
	case strings.Contains(msg, "activity"), strings.Contains(msg, "daily work"), strings.Contains(msg, "update"):
		reply, err = s.latestActivities(ctx)
	default:
		reply = replyDefault
	}

	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("chat lookup failed")
		return replyLookupFailed
	}
	return reply
}

func (s *ChatService) latestComplaints(ctx context.Context, userID string) (string, error) {
	complaints, err := s.complaints.ListByOwner(ctx, userID, chatListLimit)
	if err != nil {
		return "", err
	}
	if len(complaints) == 0 {
		return replyNoComplaints, nil
	}

	var b strings.Builder
	b.WriteString("Your latest complaints:\n")
	for i, c := range complaints {
		fmt.Fprintf(&b, "%d. %q - Status: %q\n", i+1, c.Description, c.Status)
	}
	return b.String(), nil
}

func (s *ChatService) latestActivities(ctx context.Context) (string, error) {
	activities, _, err := s.activities.List(ctx, 0, chatListLimit)
	if err != nil {
		return "", err
	}
	if len(activities) == 0 {
		return replyNoActivities, nil
	}

	var b strings.Builder
	b.WriteString("Recent activities:\n")
	for i, a := range activities {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, a.Title, a.Date.Format("2006-01-02"))
	}
	return b.String(), nil
}
