package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anupkotian/event-registration/internal/model"
)

// RegistrationRepository is the inventory ledger: every seat-count
// change is coupled to a registration-status change inside a single
// transaction, serialized per event by a row-level lock.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Reserve atomically claims one seat for (userID, eventID).
//
// SELECT ... FOR UPDATE acquires a row-level exclusive lock on the
// event row the moment the SELECT executes inside the transaction.
// Any other transaction attempting the same lock blocks until this
// one commits or rolls back, so concurrent reservations for one event
// are serialized: the read of available_seats, the status write, and
// the decrement are one indivisible unit. Without the lock, two
// transactions can read the same seat count before either writes back
// and a full event gets oversold.
//
// Outcomes:
//   - no such event: ErrNotFound
//   - seats exhausted: ErrSeatsExhausted, nothing changed
//   - already confirmed: ErrAlreadyRegistered, nothing changed
//   - prior cancelled record: reactivated (same row, same id)
//   - no prior record: inserted as confirmed
func (r *RegistrationRepository) Reserve(ctx context.Context, userID, eventID string, now time.Time) (*model.Registration, error) {
	var reg *model.Registration
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var capacity, available int
		err := tx.QueryRow(ctx,
			`SELECT capacity, available_seats FROM events WHERE id = $1 FOR UPDATE`,
			eventID,
		).Scan(&capacity, &available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event row: %w", err)
		}

		var existing model.Registration
		err = tx.QueryRow(ctx,
			`SELECT id, user_id, event_id, status, created_at, updated_at
			 FROM registrations
			 WHERE user_id = $1 AND event_id = $2`,
			userID, eventID,
		).Scan(&existing.ID, &existing.UserID, &existing.EventID,
			&existing.Status, &existing.CreatedAt, &existing.UpdatedAt)
		switch {
		case err == nil:
			if !existing.Status.CanReserve() {
				return ErrAlreadyRegistered
			}
		case errors.Is(err, pgx.ErrNoRows):
			// First registration for this pair.
		default:
			return fmt.Errorf("find registration: %w", err)
		}

		if available <= 0 {
			return ErrSeatsExhausted
		}

		// Conditional decrement: already serialized by the row lock,
		// but the predicate and the schema CHECK keep the counter
		// non-negative even if that assumption ever breaks.
		ct, err := tx.Exec(ctx,
			`UPDATE events SET available_seats = available_seats - 1
			 WHERE id = $1 AND available_seats > 0`,
			eventID,
		)
		if err != nil {
			return fmt.Errorf("decrement available_seats: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrSeatsExhausted
		}

		if existing.ID != "" {
			// Reactivation reuses the original record identity.
			_, err = tx.Exec(ctx,
				`UPDATE registrations SET status = $1, updated_at = $2 WHERE id = $3`,
				model.StatusConfirmed, now, existing.ID,
			)
			if err != nil {
				return fmt.Errorf("reactivate registration: %w", err)
			}
			existing.Status = model.StatusConfirmed
			existing.UpdatedAt = now
			reg = &existing
			return nil
		}

		created := model.Registration{
			ID:        uuid.New().String(),
			UserID:    userID,
			EventID:   eventID,
			Status:    model.StatusConfirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO registrations (id, user_id, event_id, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			created.ID, created.UserID, created.EventID, created.Status,
			created.CreatedAt, created.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("insert registration: %w", err)
		}
		reg = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Release atomically cancels the confirmed registration for
// (userID, eventID) and returns its seat to the pool. Cancelling when
// nothing is confirmed fails with ErrNoActiveRegistration and never
// touches the seat count, so double-release cannot double-increment.
func (r *RegistrationRepository) Release(ctx context.Context, userID, eventID string, now time.Time) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var capacity, available int
		err := tx.QueryRow(ctx,
			`SELECT capacity, available_seats FROM events WHERE id = $1 FOR UPDATE`,
			eventID,
		).Scan(&capacity, &available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event row: %w", err)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE registrations SET status = $1, updated_at = $2
			 WHERE user_id = $3 AND event_id = $4 AND status = $5`,
			model.StatusCancelled, now, userID, eventID, model.StatusConfirmed,
		)
		if err != nil {
			return fmt.Errorf("cancel registration: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNoActiveRegistration
		}

		ct, err = tx.Exec(ctx,
			`UPDATE events SET available_seats = available_seats + 1
			 WHERE id = $1 AND available_seats < capacity`,
			eventID,
		)
		if err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("seat count out of bounds for event %s: %w", eventID, err)
			}
			return fmt.Errorf("increment available_seats: %w", err)
		}
		if ct.RowsAffected() == 0 {
			// A confirmed registration existed, so a seat must have
			// been held. Hitting capacity here means the ledger and
			// the counter disagree.
			return fmt.Errorf("seat count already at capacity for event %s", eventID)
		}
		return nil
	})
}

// ListByUser returns the user's confirmed registrations joined with
// their event summaries, most recently created first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.user_id, r.event_id, r.status, r.created_at, r.updated_at,
		        e.id, e.name, e.location, e.category, e.date, e.capacity, e.available_seats
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 WHERE r.user_id = $1 AND r.status = $2
		 ORDER BY r.created_at DESC`,
		userID, model.StatusConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		var ev model.EventSummary
		err := rows.Scan(
			&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt,
			&ev.ID, &ev.Name, &ev.Location, &ev.Category, &ev.Date, &ev.Capacity, &ev.AvailableSeats,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Event = &ev
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
