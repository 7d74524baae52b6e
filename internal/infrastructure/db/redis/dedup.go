package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/citizenconnect/complaint-portal/internal/api/metrics"
)

const dedupTTL = 24 * time.Hour

// NotificationDedup remembers which status changes were already announced.
// Key format: notify:<complaint_id>:<revision>
type NotificationDedup struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client, ttl: dedupTTL}
}

// First atomically marks key and reports whether this call was the first to
// do so within the TTL.
func (d *NotificationDedup) First(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, "notify:"+key, "1", d.ttl).Result()
	if err != nil {
		metrics.NotificationsDedupTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("notification dedup: %w", err)
	}
	if ok {
		metrics.NotificationsDedupTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.NotificationsDedupTotal.WithLabelValues("hit").Inc()
	}
	return ok, nil
}
