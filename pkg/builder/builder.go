// Package builder assembles classified rows into the release tree. It runs a
// small state machine over the row stream: a team heading opens a team,
// player rows fill its roster, side tables accumulate for enrichment, and a
// team-summary row closes the team out. Field values that fail the grammar
// become nulls or raw fallbacks with a ledger warning; nothing here aborts
// the parse.
package builder

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/grammar"
	"github.com/mlstools/rosterparse/pkg/layout"
	"github.com/mlstools/rosterparse/pkg/models"
)

// Builder turns classified rows into a ReleaseDocument skeleton with raw
// (unresolved) names. A Builder is stateless across calls; each Build owns
// its own run state.
type Builder struct {
	log *zap.Logger
}

// New creates a builder.
func New(log *zap.Logger) *Builder {
	return &Builder{log: log}
}

// Build consumes the classified-row stream for the whole document, in page
// then row order, and returns the document skeleton. All recovered anomalies
// are appended to ledger.
func (b *Builder) Build(pages [][]layout.ClassifiedRow, ledger *models.Ledger) *models.ReleaseDocument {
	r := &run{
		log:       b.log,
		ledger:    ledger,
		doc:       &models.ReleaseDocument{},
		seenNames: make(map[string]struct{}),
	}
	for _, page := range pages {
		for _, row := range page {
			r.consume(row)
		}
	}
	if r.team != nil {
		ledger.AddDocument("document", "document ended mid-team; partial team retained", r.team.Name)
		r.closeTeam()
	}
	return r.doc
}

type run struct {
	log    *zap.Logger
	ledger *models.Ledger
	doc    *models.ReleaseDocument

	team         *models.Team
	teamIdx      int
	seenNames    map[string]struct{}
	sidebar      layout.SidebarKind
	sidebars     map[layout.SidebarKind][]string
	sidebarSlots int
	summarized   bool
}

func (r *run) consume(row layout.ClassifiedRow) {
	switch row.Kind {
	case layout.KindTeamHeading:
		r.openTeam(row.Cells[0])
	case layout.KindTeamModel:
		r.setModel(row.Cells[0])
	case layout.KindColumnHeader:
		// Column positions come from the grammar, not re-derived per page.
	case layout.KindPlayerRow:
		r.addPlayer(row.Cells)
	case layout.KindSidebarHeader:
		r.openSidebar(row.Cells[0])
	case layout.KindSidebarRow:
		r.addSidebarRow(row.Cells[0])
	case layout.KindTeamSummaryRow:
		r.applySummary(row.Cells)
	case layout.KindNoise:
		if row.Reason != "" {
			r.addWarning("row", row.Reason, strings.Join(row.Cells, " | "))
		}
	}
}

// addWarning scopes a row-level warning to the open team, or to the document
// when no team is open yet.
func (r *run) addWarning(field, message, raw string) {
	if r.team != nil {
		r.ledger.AddTeam(r.teamIdx, field, message, raw)
	} else {
		r.ledger.AddDocument(field, message, raw)
	}
}

func (r *run) openTeam(name string) {
	if r.team != nil {
		r.ledger.AddTeam(r.teamIdx, "team", "team ended without a summary row", r.team.Name)
		r.closeTeam()
	}
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	if _, dup := r.seenNames[key]; dup {
		r.ledger.AddDocument("team", "duplicate team heading", name)
	}
	r.seenNames[key] = struct{}{}

	r.teamIdx = len(r.doc.Teams)
	r.team = &models.Team{Name: name, Players: []models.Player{}}
	r.sidebar = ""
	r.sidebars = make(map[layout.SidebarKind][]string)
	r.sidebarSlots = -1
	r.summarized = false
	r.log.Debug("opened team", zap.String("team", name), zap.Int("index", r.teamIdx))
}

// setModel records the construction-model subtitle on the open team.
func (r *run) setModel(cell string) {
	if r.team == nil {
		r.ledger.AddDocument("roster_construction_model", "model line outside any team", cell)
		return
	}
	model, _ := grammar.ParseRosterConstructionModel(cell)
	r.team.RosterConstructionModel = &model
}

func (r *run) openSidebar(cell string) {
	kind, count, ok := layout.ParseSidebarHeader(cell)
	if !ok || r.team == nil {
		r.addWarning("row", "side table header outside any team", cell)
		return
	}
	r.sidebar = kind
	if kind == layout.SidebarInternational && count >= 0 {
		r.sidebarSlots = count
	}
}

func (r *run) addSidebarRow(cell string) {
	if r.team == nil || r.sidebar == "" {
		r.addWarning("row", "name row outside any table", cell)
		return
	}
	r.sidebars[r.sidebar] = append(r.sidebars[r.sidebar], strings.TrimSpace(cell))
}

// nullish reports whether a cell carries no value.
func nullish(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "-", "–", "—":
		return true
	}
	return false
}

// addPlayer parses one player row against the field grammar. Column order is
// fixed: name, roster slot, designation, current status, contract through,
// option years. Trailing columns may be absent.
func (r *run) addPlayer(cells []string) {
	if r.team == nil {
		r.ledger.AddDocument("row", "player row before any team heading", strings.Join(cells, " | "))
		return
	}
	r.sidebar = ""

	playerIdx := len(r.team.Players)
	warn := func(field, message, raw string) {
		r.ledger.AddPlayer(r.teamIdx, playerIdx, field, message, raw)
	}

	cell := func(i int) (string, bool) {
		if i >= len(cells) || nullish(cells[i]) {
			return "", false
		}
		return strings.TrimSpace(cells[i]), true
	}

	p := models.Player{Name: strings.TrimSpace(cells[0])}

	if raw, ok := cell(1); ok {
		slot, matched := grammar.ParseRosterSlot(raw)
		p.RosterSlot = slot
		if !matched {
			warn("roster_slot", "value not in expected set", raw)
		}
	} else {
		warn("roster_slot", "missing roster slot", "")
	}

	if raw, ok := cell(2); ok {
		designation, matched := grammar.ParseRosterDesignation(raw)
		p.RosterDesignation = &designation
		if !matched {
			warn("roster_designation", "value not in expected set", raw)
		}
	}

	if raw, ok := cell(3); ok {
		status, matched := grammar.ParseCurrentStatus(raw)
		p.CurrentStatus = &status
		if !matched {
			warn("current_status", "value not in expected set", raw)
		}
		if status.IsUnavailable() {
			p.Unavailable = true
		}
	}

	if raw, ok := cell(4); ok {
		years, matched := grammar.ParseYears(raw)
		p.ContractThrough = &years
		if !matched {
			warn("contract_through", "value not in expected year format", raw)
		}
	}

	if raw, ok := cell(5); ok {
		years, matched := grammar.ParseYears(raw)
		p.OptionYears = &years
		if !matched {
			warn("option_years", "value not in expected year format", raw)
		}
	}

	r.team.Players = append(r.team.Players, p)
}

var (
	intlCountRe = regexp.MustCompile(`(?i)international slots\s*:?\s*([0-9]+)`)
	gamValueRe  = regexp.MustCompile(`(?i)gam available\s*:?\s*(\(?\$?\s*-?[0-9][0-9,]*\)?)`)
)

// applySummary closes out the open team with its international-slot count and
// GAM balance, then returns the machine to awaiting-team.
func (r *run) applySummary(cells []string) {
	if r.team == nil {
		r.ledger.AddDocument("row", "team summary row outside any team", strings.Join(cells, " | "))
		return
	}
	joined := strings.Join(cells, " ")

	if m := intlCountRe.FindStringSubmatch(joined); m != nil {
		if n, ok := grammar.ParseCount(m[1]); ok {
			r.team.InternationalSlots = n
			r.summarized = true
		}
	}
	if !r.summarized {
		r.ledger.AddTeam(r.teamIdx, "international_slots", "value not in expected format", joined)
	}

	if m := gamValueRe.FindStringSubmatch(joined); m != nil {
		if v, ok := grammar.ParseCurrency(m[1]); ok {
			r.team.GAMAvailable = &v
		} else {
			r.ledger.AddTeam(r.teamIdx, "gam_available", "value not in expected currency format", m[1])
		}
	} else {
		r.ledger.AddTeam(r.teamIdx, "gam_available", "value not in expected currency format", joined)
	}

	r.closeTeam()
}

// closeTeam applies side-table enrichment and appends the team to the tree.
func (r *run) closeTeam() {
	if r.team == nil {
		return
	}
	if !r.summarized && r.sidebarSlots >= 0 {
		// No summary row; fall back to the count the side table header carried.
		r.team.InternationalSlots = r.sidebarSlots
	}
	r.enrich()
	r.doc.Teams = append(r.doc.Teams, *r.team)
	r.log.Debug("closed team",
		zap.String("team", r.team.Name),
		zap.Int("players", len(r.team.Players)))
	r.team = nil
	r.sidebar = ""
	r.sidebars = nil
}

func (r *run) enrich() {
	intl := r.sidebars[layout.SidebarInternational]
	designated := r.sidebars[layout.SidebarDesignated]
	unavailable := r.sidebars[layout.SidebarUnavailable]

	anyExemption := false
	for _, row := range intl {
		if strings.Contains(row, "+") {
			anyExemption = true
			break
		}
	}

	for i := range r.team.Players {
		p := &r.team.Players[i]

		if anyExemption {
			p.CanadianInternationalSlotExemption = boolPtr(false)
		}
		for _, row := range intl {
			if listedAs(row, p.Name) {
				p.InternationalSlot = true
				if strings.Contains(row, "+") {
					p.CanadianInternationalSlotExemption = boolPtr(true)
				}
				break
			}
		}

		if p.RosterDesignation != nil && *p.RosterDesignation == grammar.DesignationDP {
			p.ConvertibleWithTAM = boolPtr(true)
			for _, row := range designated {
				if listedAs(row, p.Name) && strings.Contains(row, "^") {
					p.ConvertibleWithTAM = boolPtr(false)
				}
			}
		}

		for _, row := range unavailable {
			if listedAs(row, p.Name) {
				p.Unavailable = true
				if p.CurrentStatus != nil && !p.CurrentStatus.IsUnavailable() {
					r.ledger.AddPlayer(r.teamIdx, i, "unavailable",
						"listed as unavailable but current status disagrees", string(*p.CurrentStatus))
				}
				break
			}
		}

		// A permanent transfer option only applies to loan players.
		if p.CurrentStatus != nil && *p.CurrentStatus == grammar.StatusLoanPlayer {
			pto := p.OptionYears != nil && grammar.HasPermanentTransferOption(*p.OptionYears)
			p.PermanentTransferOption = &pto
		}
	}
}

// listedAs matches a side-table row against a player name the way the source
// lists them: the row starts with the player's name, optionally followed by a
// marker glyph.
func listedAs(row, name string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(row)), strings.ToLower(name))
}

func boolPtr(v bool) *bool {
	return &v
}
