// Package repository implements all database queries for the event
// registration system. It uses pgx directly (no ORM) for transparency
// and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrSeatsExhausted is returned when an event has no remaining seats
// at the moment of the atomic check.
var ErrSeatsExhausted = errors.New("no available seats for this event")

// ErrAlreadyRegistered is returned when the user already holds a
// confirmed registration for the event.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrNoActiveRegistration is returned by Release when there is no
// confirmed registration to cancel.
var ErrNoActiveRegistration = errors.New("no active registration found")

// ErrContention is returned when a transaction keeps losing
// serialization conflicts after the retry budget is spent. The caller
// may retry the whole operation.
var ErrContention = errors.New("operation lost too many conflicts, try again")

// maxTxAttempts bounds retries on serialization failures so contended
// operations terminate rather than spin.
const maxTxAttempts = 3

// inTx runs fn inside a transaction, retrying up to maxTxAttempts
// times when Postgres aborts it with a serialization failure or
// deadlock. Any other error rolls back and returns immediately.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback(ctx)
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrContention, lastErr)
}

// isRetryable reports whether err is a transient conflict worth
// another attempt: serialization failure (40001) or deadlock (40P01).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// isUniqueViolation reports whether err is a unique-constraint
// violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isCheckViolation reports whether err is a check-constraint
// violation (23514). The seat-count bounds in the schema are the
// second line of defense behind the ledger's own guards.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
