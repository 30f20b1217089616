package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mlstools/rosterparse/pkg/grammar"
)

// RowKind classifies one logical row.
type RowKind string

const (
	KindTeamHeading    RowKind = "team_heading"
	KindTeamModel      RowKind = "team_model"
	KindColumnHeader   RowKind = "column_header"
	KindPlayerRow      RowKind = "player_row"
	KindTeamSummaryRow RowKind = "team_summary"
	KindSidebarHeader  RowKind = "sidebar_header"
	KindSidebarRow     RowKind = "sidebar_row"
	KindNoise          RowKind = "noise"
)

// ClassifiedRow is one logical row with its kind and cell texts in left-to-
// right order. Reason is set on Noise rows that were dropped because no
// pattern matched unambiguously; empty-reason Noise (page furniture) is
// discarded silently.
type ClassifiedRow struct {
	Kind   RowKind
	Cells  []string
	Y      float64
	Reason string
}

// SidebarKind identifies one of the per-team side tables.
type SidebarKind string

const (
	SidebarInternational SidebarKind = "international_slots"
	SidebarDesignated    SidebarKind = "designated_players"
	SidebarUnavailable   SidebarKind = "unavailable_players"
)

// Config tunes the geometry heuristics. Zero values fall back to defaults.
type Config struct {
	RowTolerance float64 // vertical band within which tokens share a row
	CellGap      float64 // horizontal gap that starts a new cell
	WordGap      float64 // horizontal gap that inserts a space within a cell
}

const (
	defaultRowTolerance = 2.0
	defaultCellGap      = 18.0
	defaultWordGap      = 1.2
)

func (c Config) withDefaults() Config {
	if c.RowTolerance <= 0 {
		c.RowTolerance = defaultRowTolerance
	}
	if c.CellGap <= 0 {
		c.CellGap = defaultCellGap
	}
	if c.WordGap <= 0 {
		c.WordGap = defaultWordGap
	}
	return c
}

// Classifier groups a page's tokens into rows and assigns each row a kind.
// A classifier is immutable and safe to reuse across pages and runs.
type Classifier struct {
	cfg       Config
	teamNames map[string]struct{} // folded valid team names, may be empty
}

// NewClassifier builds a classifier. teamNames is the optional static list of
// valid team names used for strict team-heading matches; pass the catalog's
// team names when available.
func NewClassifier(cfg Config, teamNames []string) *Classifier {
	set := make(map[string]struct{}, len(teamNames))
	for _, n := range teamNames {
		set[foldCell(n)] = struct{}{}
	}
	return &Classifier{cfg: cfg.withDefaults(), teamNames: set}
}

// ClassifyPage groups the page's tokens into rows by vertical proximity,
// splits each row into cells by horizontal gaps, and classifies every row.
// Rows are returned in top-to-bottom order.
func (c *Classifier) ClassifyPage(tokens []Token) []ClassifiedRow {
	rows := c.groupRows(tokens)
	out := make([]ClassifiedRow, 0, len(rows))
	for _, r := range rows {
		cells := c.splitCells(r)
		if len(cells) == 0 {
			continue
		}
		kind, reason := c.classify(cells)
		out = append(out, ClassifiedRow{Kind: kind, Cells: cells, Y: r[0].Y, Reason: reason})
	}
	return out
}

// groupRows bands tokens whose Y positions sit within RowTolerance of the
// band anchor. PDF Y grows upward, so rows are ordered by descending Y.
func (c *Classifier) groupRows(tokens []Token) [][]Token {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]Token
	var current []Token
	anchor := sorted[0].Y
	for _, t := range sorted {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if current == nil || anchor-t.Y > c.cfg.RowTolerance {
			if current != nil {
				rows = append(rows, current)
			}
			current = nil
			anchor = t.Y
		}
		current = append(current, t)
	}
	if current != nil {
		rows = append(rows, current)
	}
	return rows
}

// splitCells orders a row's tokens by X and merges them into cells, starting
// a new cell whenever the gap to the previous token's right edge exceeds
// CellGap.
func (c *Classifier) splitCells(row []Token) []string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var cells []string
	var cell strings.Builder
	var rightEdge float64
	for i, t := range row {
		if i > 0 {
			gap := t.X - rightEdge
			switch {
			case gap > c.cfg.CellGap:
				cells = appendCell(cells, cell.String())
				cell.Reset()
			case gap > c.cfg.WordGap:
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(t.Text)
		if end := t.X + t.W; end > rightEdge {
			rightEdge = end
		}
	}
	return appendCell(cells, cell.String())
}

func appendCell(cells []string, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return cells
	}
	return append(cells, text)
}

var (
	headerLabels = map[string]struct{}{
		"player":             {},
		"roster slot":        {},
		"roster designation": {},
		"current status":     {},
		"contract through":   {},
		"option years":       {},
	}

	intlSlotsLabelRe = regexp.MustCompile(`(?i)^international slots\s*:`)
	gamLabelRe       = regexp.MustCompile(`(?i)^gam available\s*:`)

	sidebarIntlRe        = regexp.MustCompile(`(?i)^international slots(\s*\([0-9]+\))?$`)
	sidebarDesignatedRe  = regexp.MustCompile(`(?i)^designated players$`)
	sidebarUnavailableRe = regexp.MustCompile(`(?i)^unavailable players$`)

	// Proper-noun shape for person and club names, tolerating diacritics,
	// apostrophes, hyphens, and the sidebar markers (+ Canadian exemption,
	// ^ non-convertible DP).
	personNameRe = regexp.MustCompile(`^\p{Lu}[\p{L}'.\-]*(?:,?\s+\p{Lu}[\p{L}'.\-]*)+\s*[+^]?$`)

	// Club cue for the proper-noun heuristic used when no static team list
	// is available: a league-style abbreviation somewhere in the name.
	teamCueRe = regexp.MustCompile(`(^|\s)(FC|SC|CF|LAFC|LA)(\s|$)`)

	pageFurnitureRe = regexp.MustCompile(`(?i)^(page\s+[0-9]+(\s+of\s+[0-9]+)?|[0-9]+|roster profiles.*|.*\bas of\b.*)$`)

	sidebarCountRe = regexp.MustCompile(`\(([0-9]+)\)`)
)

func (c *Classifier) classify(cells []string) (RowKind, string) {
	if len(cells) == 1 {
		return c.classifySingle(cells[0])
	}

	if c.isColumnHeader(cells) {
		return KindColumnHeader, ""
	}
	if hasMatch(cells, intlSlotsLabelRe) && hasMatch(cells, gamLabelRe) {
		return KindTeamSummaryRow, ""
	}
	if len(cells) <= 6 && personNameRe.MatchString(cells[0]) && !strings.HasSuffix(cells[0], "+") && !strings.HasSuffix(cells[0], "^") {
		return KindPlayerRow, ""
	}
	return KindNoise, "row matches no known pattern"
}

func (c *Classifier) classifySingle(cell string) (RowKind, string) {
	switch {
	case sidebarIntlRe.MatchString(cell),
		sidebarDesignatedRe.MatchString(cell),
		sidebarUnavailableRe.MatchString(cell):
		return KindSidebarHeader, ""
	}

	if _, ok := c.teamNames[foldCell(cell)]; ok {
		return KindTeamHeading, ""
	}

	// The construction-model subtitle sits directly under the team heading.
	if _, ok := grammar.ParseRosterConstructionModel(cell); ok {
		return KindTeamModel, ""
	}

	if pageFurnitureRe.MatchString(cell) {
		return KindNoise, ""
	}

	person := personNameRe.MatchString(cell)

	// Without a static list the proper-noun heuristic needs a club cue; a
	// bare proper-noun row could equally be a sidebar name, so it is never
	// silently promoted to a team heading.
	if len(c.teamNames) == 0 && teamCueRe.MatchString(cell) && properNounish(cell) {
		return KindTeamHeading, ""
	}

	if person {
		return KindSidebarRow, ""
	}
	if properNounish(cell) {
		return KindNoise, "single-cell row is ambiguous between team heading and data row"
	}
	return KindNoise, "row matches no known pattern"
}

func (c *Classifier) isColumnHeader(cells []string) bool {
	if len(cells) < 2 {
		return false
	}
	for _, cell := range cells {
		if _, ok := headerLabels[foldCell(cell)]; !ok {
			return false
		}
	}
	return true
}

// ParseSidebarHeader identifies which side table a sidebar header opens and
// extracts the slot count carried by the international header, if any.
func ParseSidebarHeader(cell string) (SidebarKind, int, bool) {
	switch {
	case sidebarIntlRe.MatchString(cell):
		count := -1
		if m := sidebarCountRe.FindStringSubmatch(cell); m != nil {
			count = atoiSafe(m[1])
		}
		return SidebarInternational, count, true
	case sidebarDesignatedRe.MatchString(cell):
		return SidebarDesignated, -1, true
	case sidebarUnavailableRe.MatchString(cell):
		return SidebarUnavailable, -1, true
	}
	return "", -1, false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func hasMatch(cells []string, re *regexp.Regexp) bool {
	for _, c := range cells {
		if re.MatchString(c) {
			return true
		}
	}
	return false
}

// properNounish reports whether every word starts with an uppercase letter or
// digit, the shape shared by headings and names.
func properNounish(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && !isUpperLetter(r) {
			return false
		}
	}
	return true
}

func isUpperLetter(r rune) bool {
	return strings.ToUpper(string(r)) == string(r) && strings.ToLower(string(r)) != string(r)
}

func foldCell(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
