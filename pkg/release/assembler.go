// Package release orchestrates one parse run: layout classification, record
// building, and entity resolution, in page and row order. The pipeline stays
// sequential because the builder's state machine depends on row order.
package release

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/builder"
	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/layout"
	"github.com/mlstools/rosterparse/pkg/models"
	"github.com/mlstools/rosterparse/pkg/pdfio"
	"github.com/mlstools/rosterparse/pkg/resolve"
)

// Structural failures: the only errors that abort a run. Everything else
// degrades into warnings.
var (
	ErrEmptyDocument = errors.New("document contains no text tokens")
	ErrNoTeams       = errors.New("document contains no recognizable team headings")
)

// Result is the output of one run: the final tree plus the warning ledger,
// kept separate so callers can route low-confidence output to review.
type Result struct {
	RunID    string                  `json:"run_id"`
	Release  *models.ReleaseDocument `json:"release"`
	Warnings []models.Warning        `json:"warnings"`
}

// Assembler wires the pipeline stages for repeated runs. The catalog is
// passed in explicitly and shared read-only; each run owns its own ledger
// and tree.
type Assembler struct {
	log       *zap.Logger
	cat       *catalog.Catalog
	resolver  *resolve.Resolver
	layoutCfg layout.Config
	builder   *builder.Builder
}

// New creates an assembler.
func New(log *zap.Logger, cat *catalog.Catalog, resolver *resolve.Resolver, layoutCfg layout.Config) *Assembler {
	return &Assembler{
		log:       log,
		cat:       cat,
		resolver:  resolver,
		layoutCfg: layoutCfg,
		builder:   builder.New(log),
	}
}

// ParseFile runs the pipeline over a PDF on disk.
func (a *Assembler) ParseFile(ctx context.Context, path string) (*Result, error) {
	pages, err := pdfio.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, pages)
}

// ParseBytes runs the pipeline over a PDF held in memory.
func (a *Assembler) ParseBytes(ctx context.Context, data []byte) (*Result, error) {
	pages, err := pdfio.ExtractBytes(data)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, pages)
}

// Run executes one parse over extracted page tokens.
func (a *Assembler) Run(ctx context.Context, pages [][]layout.Token) (*Result, error) {
	runID := uuid.New().String()
	log := a.log.With(zap.String("run_id", runID))

	total := 0
	for _, page := range pages {
		total += len(page)
	}
	if total == 0 {
		return nil, ErrEmptyDocument
	}

	ledger := models.NewLedger()
	classifier := layout.NewClassifier(a.layoutCfg, a.cat.TeamNames())

	var releaseDate models.Date
	classified := make([][]layout.ClassifiedRow, 0, len(pages))
	for _, page := range pages {
		if releaseDate.IsZero() {
			if d, ok := layout.FindReleaseDate(page); ok {
				releaseDate = models.Date{Time: d}
			}
		}
		classified = append(classified, classifier.ClassifyPage(page))
	}

	doc := a.builder.Build(classified, ledger)
	if len(doc.Teams) == 0 {
		return nil, ErrNoTeams
	}
	doc.ReleaseDate = releaseDate
	if releaseDate.IsZero() {
		ledger.AddDocument("release_date", "no release date found in document", "")
	}

	a.resolveIdentities(ctx, doc, ledger)

	log.Info("parse run complete",
		zap.Int("teams", len(doc.Teams)),
		zap.Int("warnings", ledger.Len()))

	return &Result{RunID: runID, Release: doc, Warnings: ledger.All()}, nil
}

// resolveIdentities links every team and player name to a catalog ID where
// the policy allows. A confirmed team match also canonicalizes the team name;
// player names always stay as extracted.
func (a *Assembler) resolveIdentities(ctx context.Context, doc *models.ReleaseDocument, ledger *models.Ledger) {
	for ti := range doc.Teams {
		team := &doc.Teams[ti]

		out := a.resolver.Resolve(ctx, catalog.KindTeam, team.Name, a.cat.CandidatesFor(catalog.KindTeam, team.Name))
		if out.ID != nil {
			team.ID = out.ID
			team.Name = out.CanonicalName
		} else if out.Note != "" {
			ledger.AddTeam(ti, models.FieldIdentity, out.Note, team.Name)
		}

		for pi := range team.Players {
			player := &team.Players[pi]
			pout := a.resolver.Resolve(ctx, catalog.KindPlayer, player.Name, a.cat.CandidatesFor(catalog.KindPlayer, player.Name))
			if pout.ID != nil {
				player.ID = pout.ID
			} else if pout.Note != "" {
				ledger.AddPlayer(ti, pi, models.FieldIdentity, pout.Note, player.Name)
			}
		}
	}
}
