package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-server/internal/usecase"
)

const writeTimeout = 2 * time.Second

type scoreboardRepo interface {
	Save(ctx context.Context, result *entity.RoundResult) error
	Clear(ctx context.Context) error
}

// publishEvent carries a round to save, or nil to clear the mirror.
type publishEvent struct {
	result *entity.RoundResult
}

// ScoreboardPublisher mirrors round results into storage from its own goroutine,
// so the coordinator only ever enqueues.
type ScoreboardPublisher struct {
	usecase.NopObserver

	logger *slog.Logger
	repo   scoreboardRepo
	events chan publishEvent
}

func NewScoreboardPublisher(logger *slog.Logger, repo scoreboardRepo, queueSize int) *ScoreboardPublisher {
	return &ScoreboardPublisher{
		logger: logger.With("component", "scoreboard_publisher"),
		repo:   repo,
		events: make(chan publishEvent, queueSize),
	}
}

func (that *ScoreboardPublisher) RoundEnded(result entity.RoundResult) {
	that.enqueue(publishEvent{result: &result})
}

func (that *ScoreboardPublisher) MatchReset() {
	that.enqueue(publishEvent{})
}

func (that *ScoreboardPublisher) enqueue(event publishEvent) {
	select {
	case that.events <- event:
	default:
		that.logger.Warn("publish queue is full, event dropped", "clear", event.result == nil)
	}
}

// Run writes queued events until ctx is done.
func (that *ScoreboardPublisher) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-that.events:
			if err := that.write(ctx, event); err != nil {
				log.Error("failed to publish scoreboard", "error", err)
			}
		}
	}
}

func (that *ScoreboardPublisher) write(ctx context.Context, event publishEvent) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if event.result == nil {
		if err := that.repo.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear scoreboard: %w", err)
		}
		return nil
	}

	if err := that.repo.Save(ctx, event.result); err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}

	return nil
}
