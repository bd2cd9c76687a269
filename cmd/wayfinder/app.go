package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/screens"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/adapters/sqlite"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/guard"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// records is the union of the stores the screens need.
type records interface {
	ports.IdentityStore
	ports.OperatorStore
	ports.InviteStore
	ports.FeedbackStore
	ports.ReviewStore
	ports.DirectoryStore
}

// app holds the infrastructure shared by the commands.
type app struct {
	settings *config.Settings
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	cache    ports.Cache
	locker   ports.DistributedLocker
	records  records
	health   []func(context.Context) error
	closers  []func() error
}

type appOptions struct {
	inMemory bool
}

func newApp(cmd *cobra.Command, o appOptions) (*app, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env")
	settings, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		logger:   logging.NewWithWriter(os.Stderr, logging.ParseLevel(settings.LogLevel), logging.Format(settings.LogFormat)),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.metrics, err = observability.NewMetrics(a.registry); err != nil {
		return nil, err
	}

	if err := a.openCache(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openRecords(cmd.Context(), o.inMemory); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	s := a.settings
	var cache ports.Cache
	if s.RedisAddr == "" {
		a.logger.Info("using in-process cache")
		cache = memory.NewCache()
	} else {
		rc := redis.New(redis.Config{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			PoolSize: s.RedisPoolSize,
		}, redis.WithPrefix(s.CachePrefix))
		a.closers = append(a.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", s.RedisAddr, err)
		}
		a.health = append(a.health, rc.Ping)
		a.locker = redis.NewLocker(rc.Client(), s.CachePrefix)
		a.logger.Info("using redis cache", "addr", s.RedisAddr)
		cache = rc
	}

	if len(s.SessionKeys) > 0 {
		enc, err := s.Encryption()
		if err != nil {
			return err
		}
		cache = middleware.Chain(cache, middleware.NewEncryptionMiddleware(enc))
	}
	a.cache = cache
	return nil
}

func (a *app) openRecords(ctx context.Context, inMemory bool) error {
	s := a.settings
	var seed *domain.Seed
	if s.SeedPath != "" {
		loaded, err := config.LoadSeed(s.SeedPath)
		if err != nil {
			return err
		}
		seed = &loaded
	}

	if inMemory {
		recs := memory.NewRecords()
		if seed != nil {
			if err := recs.ApplySeed(*seed); err != nil {
				return err
			}
		}
		a.records = recs
		return nil
	}

	store, err := sqlite.Open(s.DatabasePath)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, store.Close)
	a.health = append(a.health, store.Ping)
	if seed != nil {
		if err := store.ApplySeed(ctx, *seed); err != nil {
			return err
		}
		a.logger.Info("seed applied", "path", s.SeedPath)
	}
	a.records = store
	return nil
}

// dispatcher wires the guard chain, the forms and every screen, delivering
// through notifier.
func (a *app) dispatcher(notifier ports.Notifier) *dispatch.Dispatcher {
	hooks := a.metrics.Hooks().Merge(observability.LogHooks(a.logger))
	notifier = observability.Instrument(notifier, a.metrics)

	forms := form.NewStore(a.cache, form.WithTTL(a.settings.FormTTL))
	chain := guard.NewChain(guard.WithLogger(a.logger), guard.WithHooks(hooks)).
		Use("entry_gate", guard.EntryGate(a.records, a.records, nil)).
		Use("access", guard.Access(a.records, a.records, forms))

	sessionOpts := []session.Option{session.WithLogger(a.logger), session.WithLockTTL(a.settings.LockTTL)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}

	d := dispatch.New(screens.SegRoot, chain, forms, notifier,
		dispatch.WithSessions(session.NewManager(sessionOpts...)),
		dispatch.WithHooks(hooks),
		dispatch.WithLogger(a.logger),
	)

	s := screens.New(screens.Deps{
		Identities: a.records,
		Operators:  a.records,
		Invites:    a.records,
		Feedback:   a.records,
		Reviews:    a.records,
		Directory:  a.records,
		Cache:      a.cache,
		Notifier:   notifier,
	},
		screens.WithBotUsername(a.settings.BotUsername),
		screens.WithLocation(a.settings.Location()),
		screens.WithMailingConcurrency(a.settings.MailingConcurrency),
		screens.WithLogger(a.logger),
	)
	d.Handle(s.Routes(forms, form.WithHooks(hooks), form.WithLogger(a.logger))...)
	return d
}

// healthy runs every registered health check.
func (a *app) healthy(ctx context.Context) error {
	var errs []error
	for _, check := range a.health {
		errs = append(errs, check(ctx))
	}
	return errors.Join(errs...)
}

// Close releases the stores in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
}
