package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anupkotian/event-registration/internal/model"
)

const eventColumns = `id, name, organizer, description, location, category, tags, date, capacity, available_seats, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID, event.Name, event.Organizer, event.Description, event.Location,
		event.Category, event.Tags, event.Date, event.Capacity, event.AvailableSeats,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns one page of events matching the filter, with the total
// count across all pages.
func (r *EventRepository) List(ctx context.Context, filter model.EventFilter) (*model.EventPage, error) {
	where, args := buildEventFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM events` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 9
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		orderClause(filter.Sort) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	pages := (total + limit - 1) / limit
	return &model.EventPage{
		Events: events,
		Count:  len(events),
		Total:  total,
		Page:   page,
		Pages:  pages,
	}, nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Organizer, &e.Description, &e.Location,
		&e.Category, &e.Tags, &e.Date, &e.Capacity, &e.AvailableSeats,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// buildEventFilter assembles the WHERE clause for catalog queries.
func buildEventFilter(filter model.EventFilter) (string, []any) {
	var clauses []string
	var args []any

	next := func() int { return len(args) + 1 }

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		n := next()
		clauses = append(clauses, fmt.Sprintf(
			`(name ILIKE $%d OR description ILIKE $%d OR EXISTS (
				SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE $%d))`, n, n, n))
		args = append(args, pattern)
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf(`category = $%d`, next()))
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		clauses = append(clauses, fmt.Sprintf(`location ILIKE $%d`, next()))
		args = append(args, "%"+filter.Location+"%")
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, fmt.Sprintf(`date >= $%d`, next()))
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf(`date <= $%d`, next()))
		args = append(args, filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps the public sort keys onto fixed ORDER BY clauses.
// Keys are whitelisted; anything else falls back to newest first.
func orderClause(sort string) string {
	switch sort {
	case "date-asc":
		return ` ORDER BY date ASC`
	case "date-desc":
		return ` ORDER BY date DESC`
	case "name-asc":
		return ` ORDER BY name ASC`
	case "name-desc":
		return ` ORDER BY name DESC`
	case "seats-asc":
		return ` ORDER BY available_seats ASC`
	case "seats-desc":
		return ` ORDER BY available_seats DESC`
	default:
		return ` ORDER BY created_at DESC`
	}
}
