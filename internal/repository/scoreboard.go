package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
)

const (
	scoreboardKey = "match:scoreboard"
	roundsKey     = "match:rounds"
)

var ErrScoreboardNotFound = errors.New("scoreboard not found")

// ScoreboardRepository mirrors the live match tally for dashboards.
type ScoreboardRepository interface {
	Save(ctx context.Context, result *entity.RoundResult) error
	Get(ctx context.Context) (*entity.Scoreboard, error)
	Rounds(ctx context.Context) ([]entity.RoundResult, error)
	Clear(ctx context.Context) error
}

type dbScoreboard struct {
	client     *redis.Client
	roundsKept int64
}

func NewScoreboardRepository(client *redis.Client, roundsKept int) ScoreboardRepository {
	return &dbScoreboard{
		client:     client,
		roundsKept: int64(roundsKept),
	}
}

// Save stores the tally after the round and prepends the round to the bounded history.
func (that *dbScoreboard) Save(ctx context.Context, result *entity.RoundResult) error {
	scoreboardJSON, err := json.Marshal(result.Scoreboard)
	if err != nil {
		return fmt.Errorf("could not marshal scoreboard: %w", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal round result: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scoreboardKey, scoreboardJSON, 0)
		pipe.LPush(ctx, roundsKey, resultJSON)
		pipe.LTrim(ctx, roundsKey, 0, that.roundsKept-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save scoreboard: %w", err)
	}

	return nil
}

func (that *dbScoreboard) Get(ctx context.Context) (*entity.Scoreboard, error) {
	response, err := that.client.Get(ctx, scoreboardKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrScoreboardNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}

	var scoreboard entity.Scoreboard
	if err = json.Unmarshal([]byte(response), &scoreboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	return &scoreboard, nil
}

// Rounds returns the kept round results, most recent first.
func (that *dbScoreboard) Rounds(ctx context.Context) ([]entity.RoundResult, error) {
	items, err := that.client.LRange(ctx, roundsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}

	rounds := make([]entity.RoundResult, 0, len(items))
	for _, item := range items {
		var round entity.RoundResult
		if err = json.Unmarshal([]byte(item), &round); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round: %w", err)
		}
		rounds = append(rounds, round)
	}

	return rounds, nil
}

func (that *dbScoreboard) Clear(ctx context.Context) error {
	if err := that.client.Del(ctx, scoreboardKey, roundsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear scoreboard: %w", err)
	}

	return nil
}
