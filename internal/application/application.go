package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"siege-ca/internal/config"
	"siege-ca/internal/history"
	"siege-ca/internal/session"
	"siege-ca/internal/sims/siegelife"
	"siege-ca/internal/store"
	"siege-ca/internal/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the session, its spectator feed and optional persistence
// until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	world := siegelife.NewWithConfig(WorldConfig(conf.Session))
	world.Reset(0)

	opts := session.Options{
		ID:            conf.Session.ID,
		TPS:           conf.Session.TPS,
		SnapshotEvery: conf.Session.SnapshotEvery,
		Logger:        logger,
	}

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		client, err := store.NewRedisClient(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}
		defer func() {
			if err = client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		opts.Store = store.NewSnapshotRepository(client, conf.Redis.SnapshotTTL)
	}

	if conf.HistoryPath != "" {
		writer, err := history.NewWriter(conf.HistoryPath)
		if err != nil {
			return fmt.Errorf("could not open history: %w", err)
		}
		defer func() {
			if err = writer.Close(); err != nil {
				log.Error("could not close history", "error", err)
			}
			log.Info("history written", "path", writer.Path(), "rows", writer.Rows())
		}()

		opts.Recorder = writer
	}

	runner := session.New(world, opts)
	hub := websocket.NewHub(logger, runner)
	runner.SetPublisher(hub)

	if conf.Session.ID != "" && opts.Store != nil {
		err := runner.Resume(ctx, conf.Session.ID)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrSnapshotNotFound):
			log.Info("no snapshot to resume, starting fresh", "session", conf.Session.ID)
		default:
			return fmt.Errorf("could not resume session: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         conf.HTTPAddr,
		Handler:      websocket.NewMux(hub),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return runner.Run(gctx)
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "addr", conf.HTTPAddr, "session", runner.ID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		log.Info("Application context canceled, shutting down")
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// WorldConfig maps the session section onto the world options.
func WorldConfig(s config.Session) siegelife.Config {
	cfg := siegelife.DefaultConfig()
	cfg.Size = s.Size
	cfg.Players = s.Players
	cfg.ZoneRadius = s.ZoneRadius
	cfg.Density = s.Density
	cfg.Seed = s.Seed
	cfg.Workers = s.Workers
	return cfg
}
