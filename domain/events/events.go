// Package events defines the domain event contract shared by every
// aggregate. A single consistent DomainEvent/BaseEvent pair lives here so
// aggregates never construct ad hoc event shapes.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every fact an aggregate records about
// itself. Handlers/subscribers depend only on this interface, never on
// concrete event types.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	UserID() string
	Timestamp() time.Time
	Version() int
	EventData() map[string]interface{}
}

// BaseEvent is embedded by every concrete event type in this package.
type BaseEvent struct {
	eventID     string
	eventType   string
	aggregateID string
	userID      string
	timestamp   time.Time
	version     int
	data        map[string]interface{}
}

// NewBaseEvent constructs the common envelope for a concrete event.
func NewBaseEvent(eventType, aggregateID, userID string, version int, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New().String(),
		eventType:   eventType,
		aggregateID: aggregateID,
		userID:      userID,
		timestamp:   time.Now().UTC(),
		version:     version,
		data:        data,
	}
}

func (e BaseEvent) EventID() string                      { return e.eventID }
func (e BaseEvent) EventType() string                    { return e.eventType }
func (e BaseEvent) AggregateID() string                  { return e.aggregateID }
func (e BaseEvent) UserID() string                       { return e.userID }
func (e BaseEvent) Timestamp() time.Time                 { return e.timestamp }
func (e BaseEvent) Version() int                         { return e.version }
func (e BaseEvent) EventData() map[string]interface{}    { return e.data }
