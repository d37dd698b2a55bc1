// Package feed implements Provider over HTTP JSON season feeds. Each feed
// serves one provider's full season dump at a templated URL; the resilient
// fetch layer handles retries, proxies, caching and archive fallback
// underneath.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/fetch"
	"github.com/cypherlabdev/data-reconciler-service/internal/models"
	"github.com/cypherlabdev/data-reconciler-service/internal/provider"
)

// Fetcher is the subset of the fetch client the provider uses
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts ...fetch.Option) (*fetch.Response, error)
}

// Provider serves raw games from one upstream JSON season feed.
type Provider struct {
	name        string
	urlTemplate string // {league} and {year} placeholders
	fetcher     Fetcher
	logger      zerolog.Logger
}

// New creates a feed provider. urlTemplate must contain {league} and {year}
// placeholders.
func New(name, urlTemplate string, fetcher Fetcher, logger zerolog.Logger) *Provider {
	return &Provider{
		name:        name,
		urlTemplate: urlTemplate,
		fetcher:     fetcher,
		logger:      logger.With().Str("component", "feed_provider").Str("provider", name).Logger(),
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return p.name }

// seasonPayload is the feed's wire shape.
type seasonPayload struct {
	Games []models.Game `json:"games"`
}

// Season implements provider.Provider. The whole season document is fetched
// and decoded up front; iteration over it is lazy.
func (p *Provider) Season(ctx context.Context, league models.League, year int) (provider.GameIterator, error) {
	url := p.seasonURL(league, year)

	resp, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", p.name, err)
	}

	var payload seasonPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("feed %s: decode season document: %w", p.name, err)
	}

	games := make([]*models.Game, len(payload.Games))
	for i := range payload.Games {
		games[i] = &payload.Games[i]
	}

	p.logger.Debug().
		Str("league", string(league)).
		Int("year", year).
		Int("games", len(games)).
		Bool("from_cache", resp.FromCache).
		Bool("from_archive", resp.FromArchive).
		Msg("fetched season document")

	return provider.NewSliceIterator(games), nil
}

func (p *Provider) seasonURL(league models.League, year int) string {
	r := strings.NewReplacer(
		"{league}", string(league),
		"{year}", strconv.Itoa(year),
	)
	return r.Replace(p.urlTemplate)
}
