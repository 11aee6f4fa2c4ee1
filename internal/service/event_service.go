package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/anupkotian/event-registration/internal/clock"
	"github.com/anupkotian/event-registration/internal/model"
	"github.com/anupkotian/event-registration/internal/repository"
)

// EventService orchestrates catalog operations.
type EventService struct {
	events   EventStore
	clock    clock.Clock
	validate *validator.Validate
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, clk clock.Clock) *EventService {
	return &EventService{
		events:   events,
		clock:    clk,
		validate: validator.New(),
	}
}

// CreateEvent validates the request and persists a new event with its
// seat inventory initialised from capacity.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Organizer = strings.TrimSpace(req.Organizer)
	req.Location = strings.TrimSpace(req.Location)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	if !slices.Contains(model.EventCategories, req.Category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}

	now := s.clock.Now()
	if !req.Date.After(now) {
		return nil, fmt.Errorf("event date must be in the future")
	}

	event := model.NewEvent(uuid.New().String(), req, now)
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// ListEvents returns one catalog page matching the filter.
func (s *EventService) ListEvents(ctx context.Context, filter model.EventFilter) (*model.EventPage, error) {
	page, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range page.Events {
		page.Events[i].RegisteredCount = page.Events[i].Capacity - page.Events[i].AvailableSeats
	}
	return page, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event.RegisteredCount = event.Capacity - event.AvailableSeats
	return event, nil
}
