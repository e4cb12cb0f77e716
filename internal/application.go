package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-server/internal/config"
	"github.com/rocketscienceinc/tictactoe-server/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-server/internal/repository"
	"github.com/rocketscienceinc/tictactoe-server/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-server/internal/service"
	"github.com/rocketscienceinc/tictactoe-server/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-server/transport/rest"
	"github.com/rocketscienceinc/tictactoe-server/transport/tcp"
)

const (
	metricsNamespace = "tictactoe"
	publishQueueSize = 128
	startupTimeout   = 5 * time.Second
)

// RunApp - runs the application until SIGINT/SIGTERM or a server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	collector := metrics.New(metricsNamespace)
	observers := []usecase.Observer{collector}

	var scoreboardRepo repository.ScoreboardRepository
	if conf.Redis.Enabled {
		redisStorage, err := initRedisStorage(ctx, logger, conf)
		if err != nil {
			return err
		}
		defer closeRedisStorage(log, redisStorage)

		scoreboardRepo = repository.NewScoreboardRepository(redisStorage.Connection, conf.Redis.RoundsKept)
		if err = scoreboardRepo.Clear(ctx); err != nil {
			return fmt.Errorf("could not clear scoreboard mirror: %w", err)
		}

		publisher := service.NewScoreboardPublisher(logger, scoreboardRepo, publishQueueSize)
		observers = append(observers, publisher)
		group.Go(func() error { return publisher.Run(ctx) })

		log.Info("Scoreboard mirror enabled", "addr", conf.Redis.GetRedisAddr())
	}

	coordinator := usecase.NewCoordinator(logger, observers...)

	restServer := rest.New(logger, coordinator, collector.Handler())
	if scoreboardRepo != nil {
		restServer.WithMirror(scoreboardRepo)
	}

	// run HTTP server
	group.Go(func() error {
		if err := restServer.Start(ctx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// run game server
	group.Go(func() error {
		gameServer := tcp.New(logger, coordinator, collector, tcp.Options{
			OutboundBuffer: conf.OutboundBuffer,
			MaxLineLength:  conf.MaxLineLength,
		})
		if err := gameServer.Start(ctx, conf.Port); err != nil {
			return fmt.Errorf("game server error: %w", err)
		}
		return nil
	})

	go func() {
		<-ctx.Done()
		log.Info("Application context canceled, shutting down")
	}()

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Application stopped")

	return nil
}

func initRedisStorage(ctx context.Context, logger *slog.Logger, conf *config.Config) (*storage.RedisStorage, error) {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	redisStorage, err := storage.NewRedisStorage(startCtx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	logger.Debug("connected to redis", "addr", conf.Redis.GetRedisAddr())

	return redisStorage, nil
}

func closeRedisStorage(log *slog.Logger, redisStorage *storage.RedisStorage) {
	if err := redisStorage.Close(); err != nil {
		log.Error("could not close redis storage", "error", err)
	}
}
