package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

// NotificationChannel is the pub/sub channel push deliverers subscribe to.
const NotificationChannel = "notifications"

type notificationPublisher struct {
	client  *redislib.Client
	channel string
}

// NewNotificationPublisher publishes each notification as a JSON message on NotificationChannel.
func NewNotificationPublisher(client *redislib.Client) repository.NotificationPublisher {
	return &notificationPublisher{client: client, channel: NotificationChannel}
}

func (p *notificationPublisher) Publish(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	pipe := p.client.Pipeline()
	for i := range notifications {
		payload, err := json.Marshal(notifications[i])
		if err != nil {
			return err
		}
		pipe.Publish(ctx, p.channel, payload)
	}
	_, err := pipe.Exec(ctx)
	return err
}
