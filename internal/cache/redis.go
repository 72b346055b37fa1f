// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
// A nil client means the history queue is disabled; publishing becomes a
// no-op so the game server can run without Redis.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for finished-game
// summaries consumed by the historian.
var DefaultQueueName = "bankroll_games"

// PlayerResult is one player's final standing in a finished game.
type PlayerResult struct {
	Token       uuid.UUID `json:"token"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Hearts      int       `json:"hearts"`
	Multipliers int       `json:"multipliers"`
}

// GameSummaryRecord holds the minimal info the historian needs to persist a
// finished game. Live room state is never written anywhere.
type GameSummaryRecord struct {
	RoomID     string         `json:"room_id"`
	Rounds     int            `json:"rounds"`
	FinishedAt int64          `json:"finished_at"`
	Results    []PlayerResult `json:"results"`
}

// ConnectRedis initializes the global Redis client with environment
// variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishGameSummary serializes the record to JSON and pushes it onto the
// history queue. Best-effort: with no connected client it silently drops.
func PublishGameSummary(ctx context.Context, record GameSummaryRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameSummaryRecord: %w", err)
	}

	queueName := getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
