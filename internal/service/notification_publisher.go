package service

import (
	"context"
	"encoding/json"
	"fmt"

	"clinic-scheduler/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const StepPublishNotification = "notification.publish"

// NotificationPublisher appends appointment events to a Redis stream read by
// the notification dispatcher.
type NotificationPublisher struct {
	client *redis.Client
	log    *logrus.Logger
	stream string
	maxLen int64
}

func NewNotificationPublisher(client *redis.Client, log *logrus.Logger, stream string, maxLen int64) *NotificationPublisher {
	return &NotificationPublisher{
		client: client,
		log:    log,
		stream: stream,
		maxLen: maxLen,
	}
}

// Register forwards every event on the bus to the stream.
func (p *NotificationPublisher) Register(bus *EventBus) {
	bus.SubscribeAll(StepPublishNotification, p.Publish)
}

func (p *NotificationPublisher) Publish(ctx context.Context, event entity.AppointmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":           string(event.Type),
			"appointment_id": event.AppointmentID.String(),
			"payload":        string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s event to %s: %w", event.Type, p.stream, err)
	}

	p.log.Debugf("Published %s for appointment %s as %s", event.Type, event.AppointmentID, id)
	return nil
}
