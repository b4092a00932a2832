// Package cleanup implements the retention sweeper: a recurring task that
// purges events whose date has passed, together with every ticket that
// references them.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/eventra/internal/domain"
	redisx "github.com/eventra/eventra/internal/redis"
	redisrepo "github.com/eventra/eventra/internal/repository/redis"
)

// EventStore lists expired events and removes them in one batch.
type EventStore interface {
	ListExpired(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// TicketStore removes the dependents of a batch of events in one round trip.
type TicketStore interface {
	DeleteByEvents(ctx context.Context, eventIDs []uuid.UUID) (int64, error)
}

type Service struct {
	events  EventStore
	tickets TicketStore
	cache   *redisrepo.Cache
	pubsub  *redisx.EventsPubSub
	now     func() time.Time
	logger  *slog.Logger
}

// New constructs the sweeper. cache and pubsub may be nil; now defaults to
// time.Now.
func New(
	events EventStore,
	tickets TicketStore,
	cache *redisrepo.Cache,
	pubsub *redisx.EventsPubSub,
	now func() time.Time,
	logger *slog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		events:  events,
		tickets: tickets,
		cache:   cache,
		pubsub:  pubsub,
		now:     now,
		logger:  logger,
	}
}

// Sweep performs one retention pass. The cutoff is captured once at the start
// of the run so every record is judged against the same instant. Tickets are
// removed before their events, and both removals are single batched deletes
// regardless of how many events expired.
func (s *Service) Sweep(ctx context.Context) (domain.SweepReport, error) {
	const op = "service.cleanup.Sweep"

	now := s.now()

	ids, err := s.events.ListExpired(ctx, now)
	if err != nil {
		return domain.SweepReport{}, err
	}

	if len(ids) == 0 {
		s.logger.Info("retention sweep: nothing to delete")
		return domain.SweepReport{}, nil
	}

	ticketsRemoved, err := s.tickets.DeleteByEvents(ctx, ids)
	if err != nil {
		return domain.SweepReport{}, err
	}

	eventsRemoved, err := s.events.DeleteByIDs(ctx, ids)
	if err != nil {
		// The ticket cascade already ran; this run ends here and the next
		// one retries the event batch.
		return domain.SweepReport{TicketsRemoved: ticketsRemoved}, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvents(ctx, ids)
	}
	if s.pubsub != nil {
		for _, id := range ids {
			_ = s.pubsub.PublishEventRemoved(ctx, id)
		}
	}

	s.logger.Info("retention sweep finished",
		"events_removed", eventsRemoved,
		"tickets_removed", ticketsRemoved,
	)

	return domain.SweepReport{
		EventsRemoved:  eventsRemoved,
		TicketsRemoved: ticketsRemoved,
	}, nil
}

// Run sweeps once immediately and then on every tick of interval until ctx is
// cancelled. A failed sweep is logged and aborts only that run; the schedule
// keeps going with no backoff.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("retention sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("retention sweep failed", "error", err)
			}
		}
	}
}
