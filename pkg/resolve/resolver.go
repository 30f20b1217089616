// Package resolve implements the entity-resolution decision policy: a raw
// name and its scored catalog candidates either resolve automatically (single
// confident match), go to a human for confirmation (multiple plausible
// matches), or stay unresolved with a warning (no plausible match). Genuine
// ambiguity is routed to a human rather than guessed.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/models"
)

// Config holds the resolution thresholds. These are policy knobs, surfaced in
// configuration rather than hard-coded.
type Config struct {
	HighConfidence   float64 // auto-assign at or above this score
	SeparationMargin float64 // lead required over the runner-up to auto-assign
	MinPlausibility  float64 // candidates below this are not considered
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		HighConfidence:   0.86,
		SeparationMargin: 0.05,
		MinPlausibility:  0.60,
	}
}

// Outcome is the result of resolving one name. Note is non-empty when the
// name stayed unresolved and a warning should be recorded; CanonicalName is
// the catalog spelling when an ID was assigned, the raw name otherwise.
type Outcome struct {
	ID            *string
	CanonicalName string
	Note          string
}

// Resolver applies the decision policy.
type Resolver struct {
	log *zap.Logger
	cfg Config
	dis Disambiguator
}

// New creates a resolver. dis decides ambiguous cases; use Batch for
// deterministic non-interactive runs.
func New(log *zap.Logger, cfg Config, dis Disambiguator) *Resolver {
	return &Resolver{log: log, cfg: cfg, dis: dis}
}

// Resolve decides one name given its catalog candidates, which must arrive
// sorted by descending score.
func (r *Resolver) Resolve(ctx context.Context, kind catalog.Kind, rawName string, candidates []models.CandidateMatch) Outcome {
	plausible := make([]models.CandidateMatch, 0, len(candidates))
	best := 0.0
	for _, c := range candidates {
		if c.Score > best {
			best = c.Score
		}
		if c.Score >= r.cfg.MinPlausibility {
			plausible = append(plausible, c)
		}
	}

	if len(plausible) == 0 {
		return Outcome{
			CanonicalName: rawName,
			Note:          fmt.Sprintf("no confident match (best score %.2f)", best),
		}
	}

	top := plausible[0]
	lead := top.Score
	if len(plausible) > 1 {
		lead = top.Score - plausible[1].Score
	}
	if top.Score >= r.cfg.HighConfidence && (len(plausible) == 1 || lead >= r.cfg.SeparationMargin) {
		r.log.Debug("auto-assigned identity",
			zap.String("kind", string(kind)),
			zap.String("raw_name", rawName),
			zap.String("candidate", top.CandidateName),
			zap.Float64("score", top.Score))
		return assigned(top)
	}

	// Everything within the separation margin of the top candidate is a
	// plausible tie the policy refuses to break on its own.
	tied := plausible[:1]
	for _, c := range plausible[1:] {
		if top.Score-c.Score < r.cfg.SeparationMargin {
			tied = append(tied, c)
		}
	}

	choice, err := r.dis.Choose(ctx, kind, rawName, tied)
	switch {
	case errors.Is(err, ErrNoChannel):
		return Outcome{
			CanonicalName: rawName,
			Note:          fmt.Sprintf("ambiguous match left unresolved (%d candidates, top score %.2f)", len(tied), top.Score),
		}
	case err != nil:
		r.log.Warn("confirmation failed", zap.String("raw_name", rawName), zap.Error(err))
		return Outcome{
			CanonicalName: rawName,
			Note:          fmt.Sprintf("confirmation failed: %v", err),
		}
	case choice < 0 || choice >= len(tied):
		return Outcome{
			CanonicalName: rawName,
			Note:          fmt.Sprintf("all %d candidates rejected by reviewer", len(tied)),
		}
	}
	return assigned(tied[choice])
}

func assigned(c models.CandidateMatch) Outcome {
	id := c.CandidateID
	return Outcome{ID: &id, CanonicalName: c.CandidateName}
}
