package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	SubscriptionActivated     EventType = "subscription.activated"
	SubscriptionRenewed       EventType = "subscription.renewed"
	SubscriptionRenewalFailed EventType = "subscription.renewal_failed"
	SubscriptionCanceled      EventType = "subscription.canceled"
	SubscriptionExpired       EventType = "subscription.expired"
)

type SubscriptionEvent struct {
	Type           EventType
	SubscriptionID uuid.UUID
	AccountID      uuid.UUID
	PlanCode       string
	PlanName       string
	Provider       string
	AmountMinor    int64
	Currency       string
	GatewayRef     string
	Reason         string
	PeriodEnd      time.Time
	OccurredAt     time.Time
}

type Handler func(ctx context.Context, evt SubscriptionEvent) error

// Publisher is what services depend on; *Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, evt SubscriptionEvent)
}

type registration struct {
	id      int
	name    string
	handler Handler
}

// Bus delivers subscription lifecycle events synchronously, in
// registration order. A failing handler is logged and the rest still run.
type Bus struct {
	mu       sync.RWMutex
	handlers []registration
	nextID   int
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a func that removes it again. Calling the
// returned func more than once is harmless.
func (b *Bus) Subscribe(name string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, registration{id: id, name: name, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, r := range b.handlers {
			if r.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(ctx context.Context, evt SubscriptionEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]registration, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, r := range handlers {
		if err := b.dispatch(ctx, r, evt); err != nil {
			logrus.WithFields(logrus.Fields{
				"handler":         r.name,
				"event":           evt.Type,
				"subscription_id": evt.SubscriptionID,
			}).WithError(err).Error("subscription event handler failed")
		}
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *Bus) dispatch(ctx context.Context, r registration, evt SubscriptionEvent) (err error) {
	defer func() {
		if p := recover(); p != nil {
			logrus.WithFields(logrus.Fields{
				"handler": r.name,
				"event":   evt.Type,
				"panic":   p,
			}).Error("subscription event handler panicked")
		}
	}()
	return r.handler(ctx, evt)
}
