package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/anupkotian/event-registration/internal/clock"
	"github.com/anupkotian/event-registration/internal/model"
	"github.com/anupkotian/event-registration/internal/repository"
)

// RegistrationService is the public operation surface over the
// inventory ledger. It validates input and translates outcomes; all
// seat and status mutation is delegated to the ledger so no
// availability check ever happens outside the atomic boundary.
type RegistrationService struct {
	ledger Ledger
	events EventStore
	clock  clock.Clock
	logger *logrus.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(ledger Ledger, events EventStore, clk clock.Clock, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{
		ledger: ledger,
		events: events,
		clock:  clk,
		logger: logger,
	}
}

// Register reserves a seat for the user on the given event. On
// success the returned registration carries an event summary for
// display.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	reg, err := s.ledger.Reserve(ctx, userID, eventID, s.clock.Now())
	if err != nil {
		// Surface domain errors directly so handlers can set correct
		// HTTP status.
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrSeatsExhausted) ||
			errors.Is(err, repository.ErrAlreadyRegistered) ||
			errors.Is(err, repository.ErrContention) {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"event_id": eventID,
			"error":    err,
		}).Error("reserve failed")
		return nil, fmt.Errorf("register for event: %w", err)
	}

	// Display-only projection read outside the reservation
	// transaction; the registration stands even if the lookup fails.
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"event_id": eventID,
			"error":    err,
		}).Warn("event summary lookup failed")
		return reg, nil
	}
	summary := event.Summary()
	reg.Event = &summary
	return reg, nil
}

// Cancel releases the user's confirmed seat on the given event.
func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	err := s.ledger.Release(ctx, userID, eventID, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrNoActiveRegistration) ||
			errors.Is(err, repository.ErrContention) {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"event_id": eventID,
			"error":    err,
		}).Error("release failed")
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

// ListMyRegistrations returns the user's confirmed registrations
// partitioned into upcoming and past relative to now, newest first.
func (s *RegistrationService) ListMyRegistrations(ctx context.Context, userID string) (*model.MyRegistrations, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	regs, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	now := s.clock.Now()
	out := &model.MyRegistrations{
		Upcoming: []model.Registration{},
		Past:     []model.Registration{},
		Total:    len(regs),
	}
	for _, reg := range regs {
		if reg.Event != nil && reg.Event.Date.After(now) {
			out.Upcoming = append(out.Upcoming, reg)
		} else {
			out.Past = append(out.Past, reg)
		}
	}
	return out, nil
}
