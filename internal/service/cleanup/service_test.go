package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/eventra/internal/domain"
	"github.com/eventra/eventra/internal/repository"
	"github.com/eventra/eventra/internal/service/events"
)

// memStore backs both the sweeper and the lifecycle manager so end-to-end
// scenarios (create, sweep, list) run against one state.
type memStore struct {
	events  map[uuid.UUID]domain.Event
	tickets []domain.Ticket

	listExpiredErr   error
	deleteByIDsErr   error
	deleteTicketsErr error
}

func newMemStore() *memStore {
	return &memStore{events: make(map[uuid.UUID]domain.Event)}
}

func (m *memStore) Create(ctx context.Context, e domain.Event) (*domain.Event, error) {
	e.ID = uuid.New()
	m.events[e.ID] = e
	out := e
	return &out, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("mem: %w", repository.ErrNotFound)
	}
	out := e
	return &out, nil
}

func (m *memStore) List(ctx context.Context, from *time.Time) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range m.events {
		if from != nil && e.EventDate.Before(*from) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func (m *memStore) IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("mem: %w", repository.ErrNotFound)
	}
	e.Likes++
	m.events[id] = e
	out := e
	return &out, nil
}

func (m *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.events[id]; !ok {
		return fmt.Errorf("mem: %w", repository.ErrNotFound)
	}
	delete(m.events, id)
	return nil
}

func (m *memStore) ListExpired(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	if m.listExpiredErr != nil {
		return nil, m.listExpiredErr
	}
	var out []uuid.UUID
	for id, e := range m.events {
		if e.EventDate.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if m.deleteByIDsErr != nil {
		return 0, m.deleteByIDsErr
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.events[id]; ok {
			delete(m.events, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return m.DeleteByEvents(ctx, []uuid.UUID{eventID})
}

func (m *memStore) DeleteByEvents(ctx context.Context, eventIDs []uuid.UUID) (int64, error) {
	if m.deleteTicketsErr != nil {
		return 0, m.deleteTicketsErr
	}
	refs := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		refs[id.String()] = true
	}
	var kept []domain.Ticket
	var removed int64
	for _, t := range m.tickets {
		if refs[t.EventID] {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.tickets = kept
	return removed, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func addEvent(m *memStore, title string, date time.Time) uuid.UUID {
	id := uuid.New()
	m.events[id] = domain.Event{ID: id, Title: title, EventDate: date}
	return id
}

func addTicket(m *memStore, eventID string) {
	m.tickets = append(m.tickets, domain.Ticket{ID: uuid.New(), EventID: eventID})
}

func TestSweepRemovesExpiredEventsAndTickets(t *testing.T) {
	m := newMemStore()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	past1 := addEvent(m, "past1", now.Add(-48*time.Hour))
	past2 := addEvent(m, "past2", now.Add(-time.Hour))
	future := addEvent(m, "future", now.Add(24*time.Hour))
	addTicket(m, past1.String())
	addTicket(m, past1.String())
	addTicket(m, past2.String())
	addTicket(m, future.String())

	svc := New(m, m, nil, nil, func() time.Time { return now }, discardLogger())

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.EventsRemoved != 2 {
		t.Errorf("events removed = %d, want 2", report.EventsRemoved)
	}
	if report.TicketsRemoved != 3 {
		t.Errorf("tickets removed = %d, want 3", report.TicketsRemoved)
	}

	if _, ok := m.events[future]; !ok {
		t.Fatal("future event was swept")
	}
	if len(m.events) != 1 {
		t.Fatalf("%d events left, want 1", len(m.events))
	}
	for _, tk := range m.tickets {
		if tk.EventID != future.String() {
			t.Fatalf("ticket for swept event survived: %v", tk.EventID)
		}
	}
}

func TestSweepBoundaryIsStrictlyBefore(t *testing.T) {
	m := newMemStore()
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	addEvent(m, "today", now)

	svc := New(m, m, nil, nil, func() time.Time { return now }, discardLogger())

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.EventsRemoved != 0 {
		t.Fatalf("event dated exactly now must not be removed, got %d", report.EventsRemoved)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	m := newMemStore()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	addEvent(m, "past", now.Add(-time.Hour))

	svc := New(m, m, nil, nil, func() time.Time { return now }, discardLogger())
	ctx := context.Background()

	first, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.EventsRemoved != 1 {
		t.Fatalf("first sweep removed %d, want 1", first.EventsRemoved)
	}

	second, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.EventsRemoved != 0 || second.TicketsRemoved != 0 {
		t.Fatalf("second sweep did work: %+v", second)
	}
}

func TestSweepStoreErrorAbortsRunOnly(t *testing.T) {
	m := newMemStore()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	addEvent(m, "past", now.Add(-time.Hour))
	m.listExpiredErr = errors.New("store down")

	svc := New(m, m, nil, nil, func() time.Time { return now }, discardLogger())

	if _, err := svc.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	// Next run proceeds once the store recovers.
	m.listExpiredErr = nil
	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("recovered sweep: %v", err)
	}
	if report.EventsRemoved != 1 {
		t.Fatalf("recovered sweep removed %d, want 1", report.EventsRemoved)
	}
}

func TestSweepThenListsShowOnlyFutureEvents(t *testing.T) {
	m := newMemStore()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	lifecycle := events.New(m, m, nil, nil, clock, events.Config{})
	sweeper := New(m, m, nil, nil, clock, discardLogger())

	a, err := lifecycle.Create(ctx, events.CreateInput{Title: "A", EventDate: "2025-03-20"})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := lifecycle.Create(ctx, events.CreateInput{Title: "B", EventDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	addTicket(m, b.ID.String())

	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	up, err := lifecycle.ListUpcoming(ctx)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(up) != 1 || up[0].ID != a.ID {
		t.Fatalf("upcoming = %+v, want only A", up)
	}

	all, err := lifecycle.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].ID != a.ID {
		t.Fatalf("all = %+v, want only A", all)
	}

	if len(m.tickets) != 0 {
		t.Fatalf("tickets of B not purged: %v", m.tickets)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m := newMemStore()
	svc := New(m, m, nil, nil, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx, 50*time.Millisecond)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
