package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// GameCache caches canonical games in Redis for the read API
type GameCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// GameCacheConfig holds Redis cache configuration
type GameCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 24 * time.Hour
}

// NewGameCache creates a new Redis game cache
func NewGameCache(config GameCacheConfig, logger zerolog.Logger) *GameCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &GameCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "game_cache").Logger(),
	}
}

// gameKey builds the Redis key: game:{league}:{date}:{id}
func gameKey(game *models.Game) string {
	return fmt.Sprintf("game:%s:%s:%s", game.League, game.StartTime.Format("2006-01-02"), game.ID)
}

// Set caches a canonical game
func (c *GameCache) Set(ctx context.Context, game *models.Game) error {
	key := gameKey(game)

	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("cached canonical game")

	return nil
}

// Get retrieves a cached canonical game
func (c *GameCache) Get(ctx context.Context, league models.League, date, id string) (*models.Game, error) {
	key := fmt.Sprintf("game:%s:%s:%s", league, date, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("game not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var game models.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

// SetBatch caches multiple canonical games
func (c *GameCache) SetBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	// Use pipeline for batch operations
	pipe := c.client.Pipeline()

	for _, game := range games {
		data, err := json.Marshal(game)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to marshal game")
			continue
		}
		pipe.Set(ctx, gameKey(game), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Info().
		Int("count", len(games)).
		Msg("cached batch of canonical games")

	return nil
}

// GetByLeagueDate retrieves all cached games for a league on a date
func (c *GameCache) GetByLeagueDate(ctx context.Context, league models.League, date string) ([]*models.Game, error) {
	pattern := fmt.Sprintf("game:%s:%s:*", league, date)

	// Scan for keys matching pattern
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	games := make([]*models.Game, 0, len(keys))
	for _, key := range keys {
		data, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to get key")
			continue
		}

		var game models.Game
		if err := json.Unmarshal(data, &game); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to unmarshal game")
			continue
		}

		games = append(games, &game)
	}

	return games, nil
}

// Ping checks Redis connection
func (c *GameCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *GameCache) Close() error {
	return c.client.Close()
}
