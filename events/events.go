package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"giftbot/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeParticipantRegistered EventType = "participant_registered"
	EventTypeGiftSent              EventType = "gift_sent"
	EventTypeParticipantDeferred   EventType = "participant_deferred"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ParticipantRegisteredEvent represents a first-time /start registration
type ParticipantRegisteredEvent struct {
	TelegramID int64
	Username   string
}

func (e ParticipantRegisteredEvent) Type() EventType {
	return EventTypeParticipantRegistered
}

// GiftSentEvent represents a gift successfully issued to a participant
type GiftSentEvent struct {
	TelegramID int64
}

func (e GiftSentEvent) Type() EventType {
	return EventTypeGiftSent
}

// ParticipantDeferredEvent represents a participant routed to the pending
// queue because the star balance could not cover the gift
type ParticipantDeferredEvent struct {
	TelegramID  int64
	StarBalance int64
	RewardState models.RewardState
}

func (e ParticipantDeferredEvent) Type() EventType {
	return EventTypeParticipantDeferred
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the state machine
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
