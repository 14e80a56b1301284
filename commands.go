package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"storefront/config"
	"storefront/handler"
	"storefront/localstore"
	"storefront/logging"
	"storefront/service"
	"storefront/store"
)

var configPath string

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the products and favorites tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			st, err := store.NewPostgresStore(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("database migrations executed")
			return nil
		},
	}
}

func setup() (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.WithService(logger, cfg.AppEnv), nil
}

// openSlots opens the per-session slot backend named by the config.
func openSlots(ctx context.Context, cfg config.LocalStoreConfig, log logrus.FieldLogger) (localstore.Slots, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return localstore.NewMemorySlots(), nil
	case config.DriverRedis:
		rs := localstore.NewRedisSlots(cfg.RedisAddr, cfg.RedisTTL)
		if err := rs.Ping(ctx, 5); err != nil {
			rs.Close()
			return nil, err
		}
		return rs, nil
	default:
		bcfg := localstore.DefaultBadgerConfig(cfg.Path)
		bcfg.Logger = log.WithField("component", "badger")
		return localstore.OpenBadger(bcfg)
	}
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	// --- Store ---
	st, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	slots, err := openSlots(ctx, cfg.LocalStore, log)
	if err != nil {
		return errors.Wrapf(err, "open %s local store", cfg.LocalStore.Driver)
	}
	defer slots.Close()

	// --- Service ---
	sessions := service.NewSessionManager(slots, st, log)
	catalog := service.NewCatalog(st)

	// --- Handlers ---
	h := handler.NewHandler(catalog, sessions, handler.Contact{
		Phone:    cfg.WhatsApp.Phone,
		Greeting: cfg.WhatsApp.Greeting,
	}, log)

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTP.Addr).Info("http server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		sessions.RunSweeper(gctx, cfg.Session.SweepInterval, cfg.Session.IdleTimeout)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("bye")
	return err
}
