package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupkotian/event-registration/internal/clock"
	"github.com/anupkotian/event-registration/internal/model"
	"github.com/anupkotian/event-registration/internal/repository"
)

func validCreateRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		Name:        "Go Conference",
		Organizer:   "Gophers United",
		Description: "Two days of talks.",
		Location:    "Pune",
		Category:    "Conference",
		Tags:        []string{"go", "backend"},
		Date:        testNow.AddDate(0, 3, 0),
		Capacity:    500,
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("initialises seats from capacity", func(t *testing.T) {
		store := newFakeEventStore()
		svc := NewEventService(store, clock.NewFixed(testNow))

		event, err := svc.CreateEvent(ctx, validCreateRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, 500, event.Capacity)
		assert.Equal(t, 500, event.AvailableSeats)
	})

	t.Run("tags are optional", func(t *testing.T) {
		store := newFakeEventStore()
		svc := NewEventService(store, clock.NewFixed(testNow))

		req := validCreateRequest()
		req.Tags = nil

		event, err := svc.CreateEvent(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, event.Tags)
		assert.Empty(t, event.Tags)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		store := newFakeEventStore()
		svc := NewEventService(store, clock.NewFixed(testNow))

		tests := []struct {
			name   string
			mutate func(*model.CreateEventRequest)
		}{
			{"missing name", func(r *model.CreateEventRequest) { r.Name = "  " }},
			{"missing organizer", func(r *model.CreateEventRequest) { r.Organizer = "" }},
			{"zero capacity", func(r *model.CreateEventRequest) { r.Capacity = 0 }},
			{"negative capacity", func(r *model.CreateEventRequest) { r.Capacity = -5 }},
			{"capacity too large", func(r *model.CreateEventRequest) { r.Capacity = 200_000 }},
			{"unknown category", func(r *model.CreateEventRequest) { r.Category = "Rave" }},
			{"past date", func(r *model.CreateEventRequest) { r.Date = testNow.AddDate(0, 0, -1) }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := validCreateRequest()
				tt.mutate(&req)
				_, err := svc.CreateEvent(ctx, req)
				assert.Error(t, err)
			})
		}
	})
}

func TestGetEvent(t *testing.T) {
	ctx := context.Background()
	event := testEvent("ev-1", 10, testNow.AddDate(0, 1, 0))
	event.AvailableSeats = 7
	svc := NewEventService(newFakeEventStore(event), clock.NewFixed(testNow))

	got, err := svc.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", got.ID)
	assert.Equal(t, 3, got.RegisteredCount)

	_, err = svc.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.GetEvent(ctx, "")
	assert.Error(t, err)
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()
	a := testEvent("ev-a", 10, testNow.AddDate(0, 1, 0))
	b := testEvent("ev-b", 10, testNow.AddDate(0, 2, 0))
	b.CreatedAt = a.CreatedAt.Add(time.Hour)
	svc := NewEventService(newFakeEventStore(a, b), clock.NewFixed(testNow))

	page, err := svc.ListEvents(ctx, model.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Events, 2)
	assert.Equal(t, "ev-b", page.Events[0].ID, "newest first")
}
