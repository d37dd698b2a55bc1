package service

import (
	"context"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// GameCache is an interface that abstracts canonical-game cache operations
// This allows for easier testing and mocking
type GameCache interface {
	Set(ctx context.Context, game *models.Game) error
	Get(ctx context.Context, league models.League, date, id string) (*models.Game, error)
	SetBatch(ctx context.Context, games []*models.Game) error
	GetByLeagueDate(ctx context.Context, league models.League, date string) ([]*models.Game, error)
	Ping(ctx context.Context) error
	Close() error
}

// Publisher is an interface that abstracts publishing canonical games
// downstream
type Publisher interface {
	PublishBatch(ctx context.Context, league models.League, games []*models.Game) (string, error)
	Close() error
}
