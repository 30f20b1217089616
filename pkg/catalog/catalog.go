// Package catalog holds the canonical name-to-ID reference data used for
// entity resolution: an in-memory index loaded once per run, queryable by
// similarity. The catalog is immutable after load and safe to share across
// runs within a process.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/mlstools/rosterparse/pkg/models"
)

// Kind selects which side of the catalog a query targets.
type Kind string

const (
	KindTeam   Kind = "team"
	KindPlayer Kind = "player"
)

// Entry is one canonical name with its stable external identifier.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Source supplies the catalog contents. Network and caching behavior live
// behind this interface.
type Source interface {
	Load(ctx context.Context) (teams, players []Entry, err error)
}

// Config tunes catalog queries.
type Config struct {
	MaxCandidates int     // cap per query (default 10)
	MinScore      float64 // floor below which candidates are not reported (default 0.2)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxCandidates: 10,
		MinScore:      0.2,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 10
	}
	if c.MinScore <= 0 {
		c.MinScore = 0.2
	}
	return c
}

type indexed struct {
	Entry
	folded string
}

// Catalog is the loaded, read-only candidate index.
type Catalog struct {
	scorer  *Scorer
	cfg     Config
	teams   []indexed
	players []indexed
}

// Load fetches the catalog contents from src and builds the index.
func Load(ctx context.Context, src Source, scorer *Scorer, cfg Config) (*Catalog, error) {
	teams, players, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &Catalog{
		scorer:  scorer,
		cfg:     cfg.withDefaults(),
		teams:   index(teams),
		players: index(players),
	}, nil
}

func index(entries []Entry) []indexed {
	out := make([]indexed, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		out = append(out, indexed{Entry: e, folded: Fold(e.Name)})
	}
	return out
}

// CandidatesFor scores the raw name against every catalog name of the given
// kind and returns candidates sorted by descending score, ties broken
// alphabetically by candidate name for reproducibility.
func (c *Catalog) CandidatesFor(kind Kind, rawName string) []models.CandidateMatch {
	entries := c.players
	if kind == KindTeam {
		entries = c.teams
	}

	matches := make([]models.CandidateMatch, 0, c.cfg.MaxCandidates)
	for _, e := range entries {
		score := c.scorer.Similarity(rawName, e.Name)
		if score < c.cfg.MinScore {
			continue
		}
		matches = append(matches, models.CandidateMatch{
			CandidateID:   e.ID,
			CandidateName: e.Name,
			Score:         score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CandidateName < matches[j].CandidateName
	})

	if len(matches) > c.cfg.MaxCandidates {
		matches = matches[:c.cfg.MaxCandidates]
	}
	return matches
}

// TeamNames returns every canonical team name, for the classifier's strict
// team-heading check.
func (c *Catalog) TeamNames() []string {
	names := make([]string, 0, len(c.teams))
	for _, e := range c.teams {
		names = append(names, e.Name)
	}
	return names
}

// Size reports how many team and player entries are indexed.
func (c *Catalog) Size() (teams, players int) {
	return len(c.teams), len(c.players)
}
