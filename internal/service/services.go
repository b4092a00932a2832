package service

import (
	"log/slog"
	"time"

	redisx "github.com/eventra/eventra/internal/redis"
	postgres "github.com/eventra/eventra/internal/repository/postgres"
	redisrepo "github.com/eventra/eventra/internal/repository/redis"
	"github.com/eventra/eventra/internal/service/auth"
	"github.com/eventra/eventra/internal/service/cleanup"
	"github.com/eventra/eventra/internal/service/events"
	"github.com/eventra/eventra/internal/service/tickets"
)

type Services struct {
	Events  *events.Service
	Tickets *tickets.Service
	Auth    *auth.Service
	Cleanup *cleanup.Service
}

type Config struct {
	Events events.Config
}

func NewServices(
	store *postgres.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.EventsPubSub,
	sessions *redisrepo.SessionStore,
	logger *slog.Logger,
	cfg Config,
) *Services {
	now := time.Now

	return &Services{
		Events:  events.New(store.Events(), store.Tickets(), cache, pubsub, now, cfg.Events),
		Tickets: tickets.New(store.Tickets()),
		Auth:    auth.New(store.Users(), sessions),
		Cleanup: cleanup.New(store.Events(), store.Tickets(), cache, pubsub, now, logger),
	}
}
