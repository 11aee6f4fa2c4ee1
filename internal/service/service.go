// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"time"

	"github.com/anupkotian/event-registration/internal/model"
)

// EventStore is the slice of event persistence the services depend on.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	List(ctx context.Context, filter model.EventFilter) (*model.EventPage, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// Ledger is the atomic seat-inventory boundary. Implementations must
// couple the registration-status change and the seat-count change so
// no concurrent caller ever observes one without the other.
type Ledger interface {
	Reserve(ctx context.Context, userID, eventID string, now time.Time) (*model.Registration, error)
	Release(ctx context.Context, userID, eventID string, now time.Time) error
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
}
