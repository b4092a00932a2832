package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/eventra/eventra/internal/domain"
	"github.com/eventra/eventra/internal/repository"
)

const eventColumns = `id, owner, title, type, description, organized_by,
	event_date, event_time, location, participants, count, income,
	ticket_price, quantity, image, likes, comments, created_at`

type EventRepo struct {
	pool *pgxpool.Pool
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Owner,
		&e.Title,
		&e.Type,
		&e.Description,
		&e.OrganizedBy,
		&e.EventDate,
		&e.EventTime,
		&e.Location,
		&e.Participants,
		&e.Count,
		&e.Income,
		&e.TicketPrice,
		&e.Quantity,
		&e.Image,
		&e.Likes,
		&e.Comments,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// Create persists a new event and returns it with store-assigned fields.
func (r *EventRepo) Create(ctx context.Context, e domain.Event) (*domain.Event, error) {
	const op = "postgres.EventRepo.Create"

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Comments == nil {
		e.Comments = []string{}
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO events (id, owner, title, type, description, organized_by,
		 	event_date, event_time, location, participants, count, income,
		 	ticket_price, quantity, image, likes, comments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		 	$15, $16, $17)
		 RETURNING `+eventColumns,
		e.ID, e.Owner, e.Title, e.Type, e.Description, e.OrganizedBy,
		e.EventDate, e.EventTime, e.Location, e.Participants, e.Count,
		e.Income, e.TicketPrice, e.Quantity, e.Image, e.Likes, e.Comments,
	)

	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return created, nil
}

// GetByID retrieves a single event.
//
// Returns repository.ErrNotFound if no event has the given id.
func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetByID"

	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

// List returns events ordered ascending by event date. When from is non-nil
// only events on or after that instant are returned.
func (r *EventRepo) List(ctx context.Context, from *time.Time) ([]domain.Event, error) {
	const op = "postgres.EventRepo.List"

	var (
		rows pgx.Rows
		err  error
	)

	if from != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+eventColumns+`
			 FROM events
			 WHERE event_date >= $1
			 ORDER BY event_date`,
			*from,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+eventColumns+`
			 FROM events
			 ORDER BY event_date`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// IncrementLikes bumps the like counter by exactly one in a single statement
// and returns the updated event.
//
// Returns repository.ErrNotFound if no event has the given id.
func (r *EventRepo) IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.IncrementLikes"

	row := r.pool.QueryRow(ctx,
		`UPDATE events
		 SET likes = likes + 1
		 WHERE id = $1
		 RETURNING `+eventColumns,
		id,
	)

	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

// Delete removes a single event.
//
// Returns repository.ErrNotFound if nothing was deleted.
func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.EventRepo.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// ListExpired returns the ids of all events dated strictly before cutoff.
func (r *EventRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	const op = "postgres.EventRepo.ListExpired"

	rows, err := r.pool.Query(ctx,
		`SELECT id FROM events WHERE event_date < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// DeleteByIDs removes every event in ids with a single round trip and
// returns the number of rows removed.
func (r *EventRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	const op = "postgres.EventRepo.DeleteByIDs"

	if len(ids) == 0 {
		return 0, nil
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM events WHERE id = ANY($1::uuid[])`, strs)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}
