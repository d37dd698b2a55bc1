// Package identity maps provider-specific raw identifiers (team
// abbreviations, numeric venue ids, free-text names) to league-wide canonical
// identifiers. The maps are a versioned configuration asset embedded at build
// time, one file per (league, kind), read-only after load.
package identity

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

//go:embed data/*.json
var assets embed.FS

// Kind selects which identity map a resolver serves.
type Kind string

const (
	KindTeam   Kind = "teams"
	KindVenue  Kind = "venues"
	KindPlayer Kind = "players"
)

// mapFile is the on-disk shape of one identity map asset.
type mapFile struct {
	League  models.League     `json:"league"`
	Kind    Kind              `json:"kind"`
	Entries map[string]string `json:"entries"`
}

// Resolver resolves raw provider identifiers for one (league, kind) pair.
// Resolution never fails: an unmapped key is returned unchanged after a
// warning, so the entity is retained standalone instead of dropped. Better a
// duplicate unmerged entity than lost data.
type Resolver struct {
	league  models.League
	kind    Kind
	entries map[string]string
	logger  zerolog.Logger

	mu     sync.Mutex
	warned map[string]struct{}
}

// Resolve returns the canonical identifier for raw. Pure over the static map:
// repeated calls always return the same value.
func (r *Resolver) Resolve(raw string) string {
	if canonical, ok := r.entries[raw]; ok {
		return canonical
	}

	r.mu.Lock()
	if _, seen := r.warned[raw]; !seen {
		r.warned[raw] = struct{}{}
		r.logger.Warn().
			Str("league", string(r.league)).
			Str("kind", string(r.kind)).
			Str("raw", raw).
			Msg("unmapped identity, falling back to raw key")
	}
	r.mu.Unlock()

	return raw
}

// Lookup reports whether raw is mapped, without the unmapped-key fallback or
// warning. Used where callers need to distinguish "mapped" from "retained
// as-is", e.g. venue reconciliation.
func (r *Resolver) Lookup(raw string) (string, bool) {
	canonical, ok := r.entries[raw]
	return canonical, ok
}

// Len returns the number of mapped entries.
func (r *Resolver) Len() int {
	return len(r.entries)
}

// Maps holds every loaded identity map, keyed by league and kind.
type Maps struct {
	resolvers map[models.League]map[Kind]*Resolver
	logger    zerolog.Logger
}

// Load reads every embedded identity asset. Leagues or kinds without an asset
// get an empty resolver, which resolves everything to itself.
func Load(logger zerolog.Logger) (*Maps, error) {
	logger = logger.With().Str("component", "identity").Logger()

	m := &Maps{
		resolvers: make(map[models.League]map[Kind]*Resolver),
		logger:    logger,
	}

	err := fs.WalkDir(assets, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		raw, err := assets.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read identity asset %s: %w", path, err)
		}

		var file mapFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("failed to parse identity asset %s: %w", path, err)
		}
		if !file.League.Valid() {
			return fmt.Errorf("identity asset %s: unknown league %q", path, file.League)
		}

		if m.resolvers[file.League] == nil {
			m.resolvers[file.League] = make(map[Kind]*Resolver)
		}
		m.resolvers[file.League][file.Kind] = &Resolver{
			league:  file.League,
			kind:    file.Kind,
			entries: file.Entries,
			logger:  logger,
			warned:  make(map[string]struct{}),
		}

		logger.Debug().
			Str("league", string(file.League)).
			Str("kind", string(file.Kind)).
			Int("entries", len(file.Entries)).
			Msg("loaded identity map")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Teams returns the team resolver for a league.
func (m *Maps) Teams(league models.League) *Resolver {
	return m.resolver(league, KindTeam)
}

// Venues returns the venue resolver for a league.
func (m *Maps) Venues(league models.League) *Resolver {
	return m.resolver(league, KindVenue)
}

// Players returns the player resolver for a league. Player maps are mostly
// empty in practice; player reconciliation keys on jersey number and
// normalized name instead.
func (m *Maps) Players(league models.League) *Resolver {
	return m.resolver(league, KindPlayer)
}

func (m *Maps) resolver(league models.League, kind Kind) *Resolver {
	if byKind, ok := m.resolvers[league]; ok {
		if r, ok := byKind[kind]; ok {
			return r
		}
	}

	// No asset for this pair: an empty resolver keeps resolution total.
	r := &Resolver{
		league:  league,
		kind:    kind,
		entries: map[string]string{},
		logger:  m.logger,
		warned:  make(map[string]struct{}),
	}
	if m.resolvers[league] == nil {
		m.resolvers[league] = make(map[Kind]*Resolver)
	}
	m.resolvers[league][kind] = r
	return r
}
