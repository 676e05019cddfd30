package service

import (
	"context"
	"fmt"
	"sync"

	"clinic-scheduler/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// EventHandler reacts to a committed appointment change.
type EventHandler func(ctx context.Context, event entity.AppointmentEvent) error

// CascadeFailure records one dependent step that failed after the appointment
// change was already committed.
type CascadeFailure struct {
	Step string
	Err  error
}

func (f CascadeFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Step, f.Err)
}

func (f CascadeFailure) Unwrap() error {
	return f.Err
}

type subscription struct {
	step   string
	handle EventHandler
}

// EventPublisher is the emitting side of the bus.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.AppointmentEvent) []CascadeFailure
}

// EventBus dispatches appointment events to subscribers synchronously, in
// subscription order. Typed subscribers run before catch-all subscribers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[entity.AppointmentEventType][]subscription
	all      []subscription
	log      *logrus.Logger
}

func NewEventBus(log *logrus.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[entity.AppointmentEventType][]subscription),
		log:      log,
	}
}

func (b *EventBus) Subscribe(eventType entity.AppointmentEventType, step string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], subscription{step: step, handle: handler})
}

func (b *EventBus) SubscribeAll(step string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, subscription{step: step, handle: handler})
}

// Publish runs every matching handler. A failing handler does not stop the
// ones after it; all failures are returned.
func (b *EventBus) Publish(ctx context.Context, event entity.AppointmentEvent) []CascadeFailure {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.handlers[event.Type])+len(b.all))
	subs = append(subs, b.handlers[event.Type]...)
	subs = append(subs, b.all...)
	b.mu.RUnlock()

	var failures []CascadeFailure
	for _, sub := range subs {
		if err := b.run(ctx, sub, event); err != nil {
			b.log.WithFields(logrus.Fields{
				"event":          event.Type,
				"appointment_id": event.AppointmentID,
				"step":           sub.step,
			}).Warnf("Cascade step failed: %+v", err)
			failures = append(failures, CascadeFailure{Step: sub.step, Err: err})
		}
	}
	return failures
}

func (b *EventBus) run(ctx context.Context, sub subscription, event entity.AppointmentEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return sub.handle(ctx, event)
}
