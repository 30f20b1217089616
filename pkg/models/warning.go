package models

import "fmt"

// FieldIdentity is the warning field name used for entity-resolution warnings.
const FieldIdentity = "identity"

// WarningScope points at the record a warning belongs to by position in the
// release tree. Both indexes nil means the warning is document-level.
type WarningScope struct {
	Team   *int `json:"team,omitempty"`
	Player *int `json:"player,omitempty"`
}

// String renders the scope for logs and prompts.
func (s WarningScope) String() string {
	switch {
	case s.Team == nil:
		return "document"
	case s.Player == nil:
		return fmt.Sprintf("team[%d]", *s.Team)
	default:
		return fmt.Sprintf("team[%d].player[%d]", *s.Team, *s.Player)
	}
}

// Warning records one non-conforming or low-confidence value. Warnings never
// block record construction; the record keeps a best-effort value alongside.
type Warning struct {
	Scope    WarningScope `json:"scope"`
	Field    string       `json:"field"`
	Message  string       `json:"message"`
	RawValue string       `json:"raw_value"`
}

// Ledger is the append-only audit trail for one parse run. It is not safe for
// concurrent use; each run owns its own ledger.
type Ledger struct {
	warnings []Warning
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends a warning.
func (l *Ledger) Add(w Warning) {
	l.warnings = append(l.warnings, w)
}

// AddDocument appends a document-level warning.
func (l *Ledger) AddDocument(field, message, raw string) {
	l.Add(Warning{Field: field, Message: message, RawValue: raw})
}

// AddTeam appends a team-level warning.
func (l *Ledger) AddTeam(team int, field, message, raw string) {
	l.Add(Warning{Scope: WarningScope{Team: &team}, Field: field, Message: message, RawValue: raw})
}

// AddPlayer appends a player-level warning.
func (l *Ledger) AddPlayer(team, player int, field, message, raw string) {
	l.Add(Warning{Scope: WarningScope{Team: &team, Player: &player}, Field: field, Message: message, RawValue: raw})
}

// All returns a copy of the accumulated warnings in append order.
func (l *Ledger) All() []Warning {
	out := make([]Warning, len(l.warnings))
	copy(out, l.warnings)
	return out
}

// Len returns the number of accumulated warnings.
func (l *Ledger) Len() int {
	return len(l.warnings)
}

// ForTeam returns the warnings scoped to the given team index, including its
// players' warnings.
func (l *Ledger) ForTeam(team int) []Warning {
	var out []Warning
	for _, w := range l.warnings {
		if w.Scope.Team != nil && *w.Scope.Team == team {
			out = append(out, w)
		}
	}
	return out
}
