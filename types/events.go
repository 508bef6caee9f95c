package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/errors"
)

type EventType string

const (
	CategoryDocument    = "DOCUMENT"
	CategoryCredibility = "CREDIBILITY"
	CategoryProof       = "PROOF"
)

const (
	// Document events
	EventTypeDocumentUploaded  EventType = CategoryDocument + "_UPLOADED"
	EventTypeDocumentProcessed EventType = CategoryDocument + "_PROCESSED"
	EventTypeDocumentFailed    EventType = CategoryDocument + "_FAILED"
	EventTypeDocumentDeleted   EventType = CategoryDocument + "_DELETED"

	// Credibility events
	EventTypeScoreRecalculated EventType = CategoryCredibility + "_SCORE_RECALCULATED"
	EventTypeTierChanged       EventType = CategoryCredibility + "_TIER_CHANGED"

	// Proof events
	EventTypeProofIssued  EventType = CategoryProof + "_ISSUED"
	EventTypeProofRevoked EventType = CategoryProof + "_REVOKED"
)

// BaseEvent carries the fields common to every published event.
type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	BusinessID string    `json:"businessId"`
	UserID     string    `json:"userId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Version    int       `json:"version"`
}

// EventMetadata for tracking and debugging.
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	CausationID   string            `json:"causationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.BusinessID == "" {
		return errors.ValidationFailed("invalid event", "business ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventHandler processes events delivered by a subscription.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher is the pub/sub surface used by services to fan out
// document and score lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, businessID string, event Event) error
	Subscribe(ctx context.Context, businessID string, userID string, eventTypes ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, businessID string, userID string) error
}
