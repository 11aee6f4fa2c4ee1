package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anupkotian/event-registration/internal/model"
	"github.com/anupkotian/event-registration/internal/repository"
)

// fakeLedger is an in-memory stand-in for the Postgres ledger. A
// single mutex plays the role of the per-event row lock so the fake
// honours the same atomicity contract.
type fakeLedger struct {
	mu     sync.Mutex
	events map[string]*model.Event
	regs   map[string]*model.Registration // keyed user|event
	seq    int
}

func newFakeLedger(events ...*model.Event) *fakeLedger {
	f := &fakeLedger{
		events: make(map[string]*model.Event),
		regs:   make(map[string]*model.Registration),
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func regKey(userID, eventID string) string {
	return userID + "|" + eventID
}

func (f *fakeLedger) Reserve(_ context.Context, userID, eventID string, now time.Time) (*model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	existing := f.regs[regKey(userID, eventID)]
	if existing != nil && !existing.Status.CanReserve() {
		return nil, repository.ErrAlreadyRegistered
	}
	if event.AvailableSeats <= 0 {
		return nil, repository.ErrSeatsExhausted
	}

	event.AvailableSeats--
	if existing != nil {
		existing.Status = model.StatusConfirmed
		existing.UpdatedAt = now
		out := *existing
		return &out, nil
	}

	f.seq++
	reg := &model.Registration{
		ID:        fmt.Sprintf("reg-%d", f.seq),
		UserID:    userID,
		EventID:   eventID,
		Status:    model.StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.regs[regKey(userID, eventID)] = reg
	out := *reg
	return &out, nil
}

func (f *fakeLedger) Release(_ context.Context, userID, eventID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	reg := f.regs[regKey(userID, eventID)]
	if reg == nil || !reg.Status.CanRelease() {
		return repository.ErrNoActiveRegistration
	}

	reg.Status = model.StatusCancelled
	reg.UpdatedAt = now
	event.AvailableSeats++
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Registration
	for _, reg := range f.regs {
		if reg.UserID != userID || reg.Status != model.StatusConfirmed {
			continue
		}
		r := *reg
		if event, ok := f.events[reg.EventID]; ok {
			summary := event.Summary()
			r.Event = &summary
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// failingEventStore errors on every call, for exercising degraded
// read paths.
type failingEventStore struct{}

func (failingEventStore) Create(context.Context, *model.Event) error {
	return errStoreDown
}

func (failingEventStore) List(context.Context, model.EventFilter) (*model.EventPage, error) {
	return nil, errStoreDown
}

func (failingEventStore) GetByID(context.Context, string) (*model.Event, error) {
	return nil, errStoreDown
}

var errStoreDown = errors.New("store unavailable")

// fakeEventStore backs EventService tests and the registration
// service's event-summary lookups.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

func newFakeEventStore(events ...*model.Event) *fakeEventStore {
	f := &fakeEventStore{events: make(map[string]*model.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEventStore) Create(_ context.Context, event *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) List(_ context.Context, _ model.EventFilter) (*model.EventPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &model.EventPage{Events: []model.Event{}, Page: 1, Pages: 1}
	for _, e := range f.events {
		page.Events = append(page.Events, *e)
	}
	sort.Slice(page.Events, func(i, j int) bool {
		return page.Events[i].CreatedAt.After(page.Events[j].CreatedAt)
	})
	page.Count = len(page.Events)
	page.Total = page.Count
	return page, nil
}

func (f *fakeEventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *e
	return &out, nil
}
