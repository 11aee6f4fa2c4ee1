// Package model defines the core domain types for the event
// registration system.
package model

import "time"

// Event represents a bookable event with a finite seat inventory.
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Organizer      string    `json:"organizer"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags"`
	Date           time.Time `json:"date"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`

	// RegisteredCount is derived (capacity minus available seats)
	// when the event is read for display; it is not persisted.
	RegisteredCount int `json:"registered_count"`
}

// NewEvent builds an Event with the seat inventory initialised from
// capacity. Seats are derived here, at construction, rather than in a
// persistence hook. Tags are never nil: a nil slice would encode as a
// SQL NULL array and trip the NOT NULL constraint.
func NewEvent(id string, req CreateEventRequest, now time.Time) *Event {
	if req.Tags == nil {
		req.Tags = []string{}
	}
	return &Event{
		ID:             id,
		Name:           req.Name,
		Organizer:      req.Organizer,
		Description:    req.Description,
		Location:       req.Location,
		Category:       req.Category,
		Tags:           req.Tags,
		Date:           req.Date,
		Capacity:       req.Capacity,
		AvailableSeats: req.Capacity,
		CreatedAt:      now,
	}
}

// HasAvailableSeats returns true when at least one seat remains.
func (e *Event) HasAvailableSeats() bool {
	return e.AvailableSeats > 0
}

// IsUpcoming reports whether the event starts after the given instant.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Date.After(now)
}

// EventSummary is the slice of event fields attached to registration
// payloads for display.
type EventSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
}

// Summary projects the event into its registration-facing summary.
func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:             e.ID,
		Name:           e.Name,
		Location:       e.Location,
		Category:       e.Category,
		Date:           e.Date,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
	}
}

// Registration represents a user's registration for an event. At most
// one record exists per (user, event) pair; cancellation flips its
// status rather than deleting the record.
type Registration struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	EventID   string        `json:"event_id"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Event     *EventSummary `json:"event,omitempty"`
}

// EventCategories are the categories accepted for new events.
var EventCategories = []string{
	"Conference",
	"Workshop",
	"Seminar",
	"Meetup",
	"Concert",
	"Sports",
	"Networking",
	"Festival",
	"Other",
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Organizer   string    `json:"organizer" validate:"required,max=100"`
	Description string    `json:"description" validate:"required,max=1000"`
	Location    string    `json:"location" validate:"required,max=200"`
	Category    string    `json:"category" validate:"required"`
	Tags        []string  `json:"tags" validate:"max=10,dive,max=50"`
	Date        time.Time `json:"date" validate:"required"`
	Capacity    int       `json:"capacity" validate:"required,gt=0,lte=100000"`
}

// RegisterRequest is the payload for registering for an event.
type RegisterRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// EventFilter narrows and orders catalog listings.
type EventFilter struct {
	Search   string
	Category string
	Location string
	From     time.Time
	To       time.Time
	Sort     string
	Page     int
	Limit    int
}

// EventPage is one page of catalog results.
type EventPage struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

// MyRegistrations partitions a user's confirmed registrations around
// the current time.
type MyRegistrations struct {
	Upcoming []Registration `json:"upcoming"`
	Past     []Registration `json:"past"`
	Total    int            `json:"total"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
