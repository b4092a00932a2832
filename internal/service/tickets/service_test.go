package tickets

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/eventra/eventra/internal/domain"
)

type fakeTicketStore struct {
	tickets []domain.Ticket
}

func (f *fakeTicketStore) Create(ctx context.Context, t domain.Ticket) (*domain.Ticket, error) {
	t.ID = uuid.New()
	f.tickets = append(f.tickets, t)
	out := t
	return &out, nil
}

func (f *fakeTicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	return append([]domain.Ticket(nil), f.tickets...), nil
}

func (f *fakeTicketStore) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketStore) Delete(ctx context.Context, id uuid.UUID) error {
	var kept []domain.Ticket
	for _, t := range f.tickets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tickets = kept
	return nil
}

func TestCreateExtractsReferences(t *testing.T) {
	store := &fakeTicketStore{}
	svc := New(store)

	payload := json.RawMessage(`{"eventid":"ev-1","userid":"u-1","seat":"A4","price":25}`)
	created, err := svc.Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.EventID != "ev-1" || created.UserID != "u-1" {
		t.Fatalf("references = %q/%q", created.EventID, created.UserID)
	}

	// The full payload survives untouched as the details document.
	var details map[string]any
	if err := json.Unmarshal(created.Details, &details); err != nil {
		t.Fatalf("details not valid JSON: %v", err)
	}
	if details["seat"] != "A4" {
		t.Fatalf("details = %v", details)
	}
}

func TestCreateToleratesArbitraryPayloads(t *testing.T) {
	store := &fakeTicketStore{}
	svc := New(store)
	ctx := context.Background()

	// Malformed body is accepted with empty references.
	created, err := svc.Create(ctx, json.RawMessage(`not json at all`))
	if err != nil {
		t.Fatalf("create malformed: %v", err)
	}
	if created.EventID != "" || created.UserID != "" {
		t.Fatalf("references from garbage = %q/%q", created.EventID, created.UserID)
	}

	// Empty body defaults to an empty details document.
	created, err = svc.Create(ctx, nil)
	if err != nil {
		t.Fatalf("create empty: %v", err)
	}
	if string(created.Details) != "{}" {
		t.Fatalf("details = %q, want {}", created.Details)
	}
}

func TestListByUserFilters(t *testing.T) {
	store := &fakeTicketStore{}
	svc := New(store)
	ctx := context.Background()

	for _, p := range []string{
		`{"eventid":"ev-1","userid":"u-1"}`,
		`{"eventid":"ev-2","userid":"u-2"}`,
		`{"eventid":"ev-3","userid":"u-1"}`,
	} {
		if _, err := svc.Create(ctx, json.RawMessage(p)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, err := svc.ListByUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d tickets, want 2", len(mine))
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d tickets, want 3", len(all))
	}
}

func TestDeleteUnknownTicketIsNoop(t *testing.T) {
	store := &fakeTicketStore{}
	svc := New(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, json.RawMessage(`{"eventid":"ev-1","userid":"u-1"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if len(store.tickets) != 1 {
		t.Fatal("unrelated ticket removed")
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.tickets) != 0 {
		t.Fatal("ticket not removed")
	}
}
