package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/eventra/eventra/internal/domain"
)

const ticketColumns = `id, event_id, user_id, details, created_at`

type TicketRepo struct {
	pool *pgxpool.Pool
}

// Create persists a ticket. The event and user references are stored as
// opaque strings with no referential check, matching the loose coupling
// between the two collections.
func (r *TicketRepo) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Create"

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if len(t.Details) == 0 {
		t.Details = []byte(`{}`)
	}

	var created domain.Ticket
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tickets (id, event_id, user_id, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+ticketColumns,
		t.ID, t.EventID, t.UserID, t.Details,
	).Scan(&created.ID, &created.EventID, &created.UserID, &created.Details, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &created, nil
}

// List returns every ticket in the store.
func (r *TicketRepo) List(ctx context.Context) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.List"

	return r.list(ctx, op,
		`SELECT `+ticketColumns+` FROM tickets ORDER BY created_at`)
}

// ListByUser returns the tickets whose user reference equals userID.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByUser"

	return r.list(ctx, op,
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID)
}

func (r *TicketRepo) list(ctx context.Context, op, sql string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.EventID, &t.UserID, &t.Details, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Delete removes a single ticket. Deleting a missing ticket is not an error,
// matching the public DELETE /tickets/:id contract.
func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TicketRepo.Delete"

	if _, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// DeleteByEvent removes every ticket referencing eventID and returns how
// many were removed.
func (r *TicketRepo) DeleteByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	const op = "postgres.TicketRepo.DeleteByEvent"

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tickets WHERE event_id = $1`, eventID.String())
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

// DeleteByEvents removes every ticket referencing any id in eventIDs with a
// single round trip.
func (r *TicketRepo) DeleteByEvents(ctx context.Context, eventIDs []uuid.UUID) (int64, error) {
	const op = "postgres.TicketRepo.DeleteByEvents"

	if len(eventIDs) == 0 {
		return 0, nil
	}

	strs := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		strs[i] = id.String()
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tickets WHERE event_id = ANY($1)`, strs)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}
