package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"strconv"

	"github.com/sugit/boardsync/internal/config"
	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/discussion/commands"
	"github.com/sugit/boardsync/internal/modules/discussion/store"
	"github.com/sugit/boardsync/internal/modules/room"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = (*SyncServer)(nil)

// SyncServer is the composition root: it wires the discussion store, the
// room manager, the mediator command handlers, and the websocket endpoint
// into one http.Server.
type SyncServer struct {
	server *http.Server
	relay  *room.RedisRelay
}

func NewSyncServer(config config.Config) (*SyncServer, error) {
	baseCtx := context.Background()
	logger := config.Logger

	var discussions store.Store
	if config.DatabaseURL != "" {
		db, err := sql.Open("postgres", config.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
			return nil, err
		}

		discussions = store.NewPostgresStore(db)
	} else {
		discussions = store.NewMemoryStore()
	}

	rooms := room.NewManager(logger)

	var broadcaster commands.Broadcaster = rooms
	var relay *room.RedisRelay
	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})

		var err error
		relay, err = room.NewRedisRelay(baseCtx, client, rooms, logger)
		if err != nil {
			return nil, err
		}

		broadcaster = relay
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	createDiscussionHandler := commands.NewCreateDiscussionCommandHandler(discussions)
	err := mediator.RegisterRequestHandler[commands.CreateDiscussionCommand, commands.CreateDiscussionResponse](
		createDiscussionHandler,
	)
	if err != nil {
		return nil, err
	}

	joinDiscussionHandler := commands.NewJoinDiscussionCommandHandler(rooms)
	err = mediator.RegisterRequestHandler[commands.JoinDiscussionCommand, core.Unit](
		joinDiscussionHandler,
	)
	if err != nil {
		return nil, err
	}

	getDiscussionHandler := commands.NewGetDiscussionQueryHandler(discussions)
	err = mediator.RegisterRequestHandler[commands.GetDiscussionQuery, commands.GetDiscussionResponse](
		getDiscussionHandler,
	)
	if err != nil {
		return nil, err
	}

	updateDiscussionHandler := commands.NewUpdateDiscussionCommandHandler(discussions, broadcaster)
	err = mediator.RegisterRequestHandler[commands.UpdateDiscussionCommand, core.Unit](
		updateDiscussionHandler,
	)
	if err != nil {
		return nil, err
	}

	// http

	ws := &wsHandler{rooms: rooms, logger: logger}

	r := chi.NewRouter()
	r.Get("/ws", ws.handleConnection)

	server := http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: r,
	}

	return &SyncServer{server: &server, relay: relay}, nil
}

// Handler exposes the routing tree so tests can mount the server in-process.
func (s *SyncServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *SyncServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *SyncServer) Stop() error {
	if s.relay != nil {
		if err := s.relay.Close(); err != nil {
			return err
		}
	}

	return s.server.Close()
}
