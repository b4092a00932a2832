package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/eventra/internal/dates"
	"github.com/eventra/eventra/internal/domain"
	redisx "github.com/eventra/eventra/internal/redis"
	"github.com/eventra/eventra/internal/repository"
	redisrepo "github.com/eventra/eventra/internal/repository/redis"
)

// EventStore is the persistence surface the lifecycle manager needs.
type EventStore interface {
	Create(ctx context.Context, e domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, from *time.Time) ([]domain.Event, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TicketStore covers the cascade issued before an event is removed.
type TicketStore interface {
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type Config struct {
	EventTTL time.Duration
	ListTTL  time.Duration
}

type Service struct {
	events  EventStore
	tickets TicketStore
	cache   *redisrepo.Cache
	pubsub  *redisx.EventsPubSub
	now     func() time.Time
	cfg     Config
}

// New constructs the lifecycle manager. cache and pubsub may be nil; now
// defaults to time.Now.
func New(
	events EventStore,
	tickets TicketStore,
	cache *redisrepo.Cache,
	pubsub *redisx.EventsPubSub,
	now func() time.Time,
	cfg Config,
) *Service {
	if now == nil {
		now = time.Now
	}

	if cfg.EventTTL <= 0 {
		cfg.EventTTL = 60 * time.Second
	}

	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 15 * time.Second
	}

	return &Service{
		events:  events,
		tickets: tickets,
		cache:   cache,
		pubsub:  pubsub,
		now:     now,
		cfg:     cfg,
	}
}

// CreateInput carries event fields as they arrive from the multipart form:
// every numeric field is still a string and may be empty.
type CreateInput struct {
	Owner       string
	Title       string
	Type        string
	Description string
	OrganizedBy string
	EventDate   string
	EventTime   string
	Location    string

	Participants string
	Count        string
	Income       string
	TicketPrice  string
	Quantity     string
	Likes        string

	ImagePath string
}

// Create validates and coerces the input, normalizes the calendar day to a
// timezone-independent instant and persists the event.
//
// Returns an ErrValidation descendant when title or eventDate are missing or
// a supplied numeric field is not coercible.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Event, error) {
	const op = "service.events.Create"

	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingTitle)
	}

	day, err := dates.Normalize(in.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEventDate)
	}
	if day == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingEventDate)
	}

	participants, err := optionalInt(in.Participants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := optionalInt(in.Count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	income, err := optionalFloat(in.Income)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	quantity, err := optionalInt(in.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// ticketPrice and likes default to zero instead of staying absent.
	ticketPrice, err := floatOrZero(in.TicketPrice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	likes, err := intOrZero(in.Likes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.events.Create(ctx, domain.Event{
		Owner:        in.Owner,
		Title:        in.Title,
		Type:         in.Type,
		Description:  in.Description,
		OrganizedBy:  in.OrganizedBy,
		EventDate:    *day,
		EventTime:    in.EventTime,
		Location:     in.Location,
		Participants: participants,
		Count:        count,
		Income:       income,
		TicketPrice:  ticketPrice,
		Quantity:     quantity,
		Image:        in.ImagePath,
		Likes:        likes,
		Comments:     []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, created.ID, false)

	return created, nil
}

// ListUpcoming returns events dated on or after now, ascending by date.
func (s *Service) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	const op = "service.events.ListUpcoming"

	now := s.now()

	out, err := s.cachedList(ctx, redisx.KeyUpcomingEvents(), &now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListAll returns every event ascending by date; the calendar view buckets
// them into days client-side.
func (s *Service) ListAll(ctx context.Context) ([]domain.Event, error) {
	const op = "service.events.ListAll"

	out, err := s.cachedList(ctx, redisx.KeyAllEvents(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) cachedList(ctx context.Context, key string, from *time.Time) ([]domain.Event, error) {
	if s.cache == nil {
		return s.events.List(ctx, from)
	}

	return redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.ListTTL,
		func(ctx context.Context) ([]domain.Event, error) {
			return s.events.List(ctx, from)
		},
	)
}

// GetByID retrieves a single event.
//
// Returns ErrEventNotFound if no event has the given id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.events.GetByID"

	load := func(ctx context.Context) (domain.Event, error) {
		e, err := s.events.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Event{}, ErrEventNotFound
			}

			return domain.Event{}, err
		}

		return *e, nil
	}

	var (
		e   domain.Event
		err error
	)
	if s.cache != nil {
		e, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyEvent(id), s.cfg.EventTTL, load)
	} else {
		e, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

// Like increments the like counter by exactly one and returns the updated
// event. There is no per-user tracking: the same caller may like an event any
// number of times.
//
// Returns ErrEventNotFound if no event has the given id.
func (s *Service) Like(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.events.Like"

	e, err := s.events.IncrementLikes(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id, false)

	return e, nil
}

// Delete removes an event and every ticket referencing it. The ticket cascade
// is issued and awaited before the event delete; the two stores share no
// transaction, so a crash between the two steps leaves an event whose tickets
// are already gone. That window is accepted and documented rather than hidden.
//
// Returns ErrEventNotFound if the lookup before the cascade finds nothing.
// If the event vanishes between the lookup and the final delete the call
// still succeeds: the cascade has run and the record is gone either way.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.events.Delete"

	if _, err := s.events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.tickets.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.events.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id, true)

	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID, removed bool) {
	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, id)
	}

	if s.pubsub != nil {
		if removed {
			_ = s.pubsub.PublishEventRemoved(ctx, id)
		} else {
			_ = s.pubsub.PublishEventChanged(ctx, id)
		}
	}
}

// optionalInt coerces a form value: empty stays absent, anything else must
// parse as an integer.
func optionalInt(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	return &v, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	return &v, nil
}

func intOrZero(s string) (int64, error) {
	v, err := optionalInt(s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}

	return *v, nil
}

func floatOrZero(s string) (float64, error) {
	v, err := optionalFloat(s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}

	return *v, nil
}
