package server

import (
	"context"

	"github.com/jrsteele09/go-token-authority/auth"
	staticclientrepo "github.com/jrsteele09/go-token-authority/clients/static"
	"github.com/jrsteele09/go-token-authority/internal/config"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/kv"
	"github.com/jrsteele09/go-token-authority/pake"
	"github.com/jrsteele09/go-token-authority/store/postgres"
	"github.com/jrsteele09/go-token-authority/token"
	"github.com/jrsteele09/go-token-authority/token/keys"
	keyrepofake "github.com/jrsteele09/go-token-authority/token/keys/repofake"
	"github.com/jrsteele09/go-token-authority/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-token-authority/token/refresh/repofake"
	"github.com/jrsteele09/go-token-authority/users"
	fakeuserrepo "github.com/jrsteele09/go-token-authority/users/repofake"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type bootstrapOptions struct {
	redis    redis.UniversalClient
	protocol pake.Protocol
}

// BootstrapOption defines a function type to modify how Bootstrap assembles the server.
type BootstrapOption func(*bootstrapOptions)

// WithRedisClient uses rdb instead of dialing the configured redis address. The caller
// keeps ownership of rdb.
func WithRedisClient(rdb redis.UniversalClient) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.redis = rdb
	}
}

// WithProtocol enables the login and registration routes over protocol.
func WithProtocol(protocol pake.Protocol) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.protocol = protocol
	}
}

// durableStore is one backing for the three durable repositories.
type durableStore struct {
	keys    keys.Repo
	users   users.Repo
	refresh refresh.Repo
	check   HealthCheck
	close   func()
}

// Bootstrap connects the collaborators named by cfg, provisions key material and the
// dummy user, and returns a ready server. Close the server to release its connections.
func Bootstrap(ctx context.Context, cfg config.Config, options ...BootstrapOption) (_ *Server, err error) {
	var o bootstrapOptions
	for _, opt := range options {
		opt(&o)
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	if o.redis == nil {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		closers = append(closers, func() { _ = rdb.Close() })
		o.redis = rdb
	}
	rdb := o.redis
	cache := kv.NewRedisStore(rdb, cfg.GetRedisKeyPrefix())

	store, err := openDurableStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, store.close)

	material := keys.NewMaterial(store.keys)
	if err := material.Provision(ctx); err != nil {
		return nil, pkgerrors.Wrap(err, "[Bootstrap] provision keys")
	}
	if err := pake.EnsureDummyUser(ctx, store.users); err != nil {
		return nil, pkgerrors.Wrap(err, "[Bootstrap] dummy user")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := refresh.NewEngine(store.refresh, material, cfg, refresh.WithMetrics(refresh.NewMetrics(registry)))
	if err != nil {
		return nil, err
	}
	issuer, err := token.NewIssuer(cache, engine)
	if err != nil {
		return nil, err
	}

	clientRepo := staticclientrepo.NewStaticClientRepo(cfg.GetRegisteredClients())
	if clientRepo.Open() {
		log.Warn().Msg("OAUTH_CLIENTS is empty, any client_id is accepted")
	}
	for _, client := range clientRepo.List() {
		log.Info().Str("client_id", client.ID).Strs("redirect_uris", client.RedirectURIs).Msg("registered client")
	}
	authService, err := auth.NewAuthorizationService(auth.Repos{
		Clients: clientRepo,
		Cache:   cache,
	}, cfg)
	if err != nil {
		return nil, err
	}

	flow, err := pake.NewFlow(o.protocol, store.users, material, cache, cfg)
	if errors.Is(err, errors.ErrPakeUnavailable) {
		log.Warn().Msg("no PAKE protocol configured, login and registration answer 503")
		flow, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	s, err := New(cfg, Services{
		Auth:     authService,
		Issuer:   issuer,
		Pake:     flow,
		Keys:     material,
		Registry: registry,
		Checks: map[string]HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"store": store.check,
		},
	})
	if err != nil {
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// openDurableStore selects postgres when DATABASE_URL is set and migrates it. Without it
// the in-process repositories are used and nothing survives a restart.
func openDurableStore(ctx context.Context, cfg config.StoreConfig) (*durableStore, error) {
	if cfg.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL is not set, using the in-memory store")
		return &durableStore{
			keys:    keyrepofake.NewFakeKeyRepo(),
			users:   fakeuserrepo.NewFakeUserRepo(),
			refresh: refreshrepofake.NewFakeRefreshTokenRepo(),
			check:   func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Bootstrap] open database")
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(err, "[Bootstrap] migrate database")
	}
	log.Info().Msg("database migrated")

	return &durableStore{
		keys:    postgres.NewKeyRepo(db.SQL()),
		users:   postgres.NewUserRepo(db.SQL()),
		refresh: postgres.NewRefreshTokenRepo(db.SQL()),
		check:   db.SQL().PingContext,
		close:   db.Close,
	}, nil
}
