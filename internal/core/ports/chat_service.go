package ports

import "context"

type ChatService interface {
	Reply(ctx context.Context, userID, message string) string
}
