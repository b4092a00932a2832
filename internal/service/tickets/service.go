package tickets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventra/eventra/internal/domain"
)

// TicketStore is the persistence surface for ticket CRUD.
type TicketStore interface {
	Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store TicketStore
}

func New(store TicketStore) *Service {
	return &Service{store: store}
}

// Create stores a ticket from an arbitrary JSON payload. The eventid and
// userid references are extracted when present; everything else rides along
// unvalidated in the details document. No check is made that the referenced
// event exists, the cascade on event deletion is what keeps the collections
// consistent.
func (s *Service) Create(ctx context.Context, payload json.RawMessage) (*domain.Ticket, error) {
	const op = "service.tickets.Create"

	var refs struct {
		EventID string `json:"eventid"`
		UserID  string `json:"userid"`
	}
	// A malformed body yields empty references, not an error: the original
	// contract accepts any payload shape.
	_ = json.Unmarshal(payload, &refs)

	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	created, err := s.store.Create(ctx, domain.Ticket{
		EventID: refs.EventID,
		UserID:  refs.UserID,
		Details: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// List returns every ticket. The public GET /tickets/:id route funnels here
// with its path parameter ignored, faithfully to the original contract.
func (s *Service) List(ctx context.Context) ([]domain.Ticket, error) {
	const op = "service.tickets.List"

	out, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByUser returns the tickets referencing userID.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const op = "service.tickets.ListByUser"

	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Delete removes one ticket. Unknown ids are a no-op success.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.tickets.Delete"

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
