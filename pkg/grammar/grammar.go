// Package grammar holds the static field grammar for roster release documents:
// the accepted enumeration values for each typed field and the parsing rules
// for slots, currency amounts, and contract-year phrasings. It has no runtime
// dependencies on the rest of the pipeline.
package grammar

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RosterDesignation is a regulatory category affecting how a player counts
// against roster rules. Values outside the canonical set are carried verbatim.
type RosterDesignation string

const (
	DesignationDP             RosterDesignation = "Designated Player"
	DesignationYoungDP        RosterDesignation = "Young Designated Player"
	DesignationTAM            RosterDesignation = "TAM Player"
	DesignationU22            RosterDesignation = "U22 Initiative"
	DesignationHomegrown      RosterDesignation = "Homegrown Player"
	DesignationGenAdidas      RosterDesignation = "Generation adidas"
	DesignationProDevelopment RosterDesignation = "Player Professional Development Role"
)

var designations = []RosterDesignation{
	DesignationDP,
	DesignationYoungDP,
	DesignationTAM,
	DesignationU22,
	DesignationHomegrown,
	DesignationGenAdidas,
	DesignationProDevelopment,
}

// ParseRosterDesignation maps a raw cell to a canonical designation.
// The second return is false when the value is not in the accepted set.
func ParseRosterDesignation(s string) (RosterDesignation, bool) {
	key := canonKey(s)
	for _, d := range designations {
		if canonKey(string(d)) == key {
			return d, true
		}
	}
	return RosterDesignation(strings.TrimSpace(s)), false
}

// CurrentStatus is a player availability phrase.
type CurrentStatus string

const (
	StatusOnLoan      CurrentStatus = "Unavailable - On Loan"
	StatusSEI         CurrentStatus = "Unavailable - SEI"
	StatusP1ITC       CurrentStatus = "Unavailable - P1/ITC"
	StatusInjured     CurrentStatus = "Unavailable - Injured List"
	StatusUnavailable CurrentStatus = "Unavailable - Other"
	StatusOffBudget   CurrentStatus = "Off-Budget"
	StatusLoanPlayer  CurrentStatus = "Loan Player"
)

var statuses = []CurrentStatus{
	StatusOnLoan,
	StatusSEI,
	StatusP1ITC,
	StatusInjured,
	StatusUnavailable,
	StatusOffBudget,
	StatusLoanPlayer,
}

// ParseCurrentStatus maps a raw cell to a canonical status phrase.
func ParseCurrentStatus(s string) (CurrentStatus, bool) {
	key := canonKey(s)
	for _, cs := range statuses {
		if canonKey(string(cs)) == key {
			return cs, true
		}
	}
	return CurrentStatus(strings.TrimSpace(s)), false
}

// IsUnavailable reports whether the status phrase marks the player as
// unavailable for selection.
func (cs CurrentStatus) IsUnavailable() bool {
	return strings.HasPrefix(strings.ToLower(string(cs)), "unavailable")
}

// RosterConstructionModel is the roster-building model a team has elected.
type RosterConstructionModel string

const (
	ModelDesignatedPlayer RosterConstructionModel = "Designated Player Model"
	ModelU22Initiative    RosterConstructionModel = "U22 Initiative Player Model"
)

var constructionModels = []RosterConstructionModel{
	ModelDesignatedPlayer,
	ModelU22Initiative,
}

// ParseRosterConstructionModel maps a raw cell to a canonical model name.
func ParseRosterConstructionModel(s string) (RosterConstructionModel, bool) {
	key := canonKey(s)
	for _, m := range constructionModels {
		if canonKey(string(m)) == key {
			return m, true
		}
	}
	return RosterConstructionModel(strings.TrimSpace(s)), false
}

// RosterSlotKind discriminates the structured roster-slot value.
type RosterSlotKind string

const (
	SlotSenior           RosterSlotKind = "senior"
	SlotSupplemental     RosterSlotKind = "supplemental"
	SlotSupplementalSpot RosterSlotKind = "supplemental_spot"
	SlotOffRoster        RosterSlotKind = "off_roster"
	SlotRaw              RosterSlotKind = "raw"
)

const (
	labelSenior       = "Senior Roster"
	labelSupplemental = "Supplemental Roster"
	labelOffRoster    = "Off-Roster (Unavailable)"
)

var supplementalSpotRe = regexp.MustCompile(`(?i)^supplemental\s+spot\s+([1-9][0-9]*)$`)

// RosterSlot is a player's categorical position within roster accounting:
// either a fixed label or a numbered supplemental spot. Unrecognized labels
// are kept verbatim with Kind SlotRaw.
type RosterSlot struct {
	Kind RosterSlotKind
	Spot int    // set only for SlotSupplementalSpot
	Raw  string // set only for SlotRaw
}

// ParseRosterSlot parses a table title or cell into a structured slot.
func ParseRosterSlot(s string) (RosterSlot, bool) {
	trimmed := strings.TrimSpace(s)
	if m := supplementalSpotRe.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		return RosterSlot{Kind: SlotSupplementalSpot, Spot: n}, true
	}
	switch canonKey(trimmed) {
	case canonKey(labelSenior):
		return RosterSlot{Kind: SlotSenior}, true
	case canonKey(labelSupplemental):
		return RosterSlot{Kind: SlotSupplemental}, true
	case canonKey(labelOffRoster):
		return RosterSlot{Kind: SlotOffRoster}, true
	}
	return RosterSlot{Kind: SlotRaw, Raw: trimmed}, false
}

// String returns the document-facing label for the slot.
func (rs RosterSlot) String() string {
	switch rs.Kind {
	case SlotSenior:
		return labelSenior
	case SlotSupplemental:
		return labelSupplemental
	case SlotSupplementalSpot:
		return fmt.Sprintf("Supplemental Spot %d", rs.Spot)
	case SlotOffRoster:
		return labelOffRoster
	default:
		return rs.Raw
	}
}

// MarshalJSON serializes the slot as its label string.
func (rs RosterSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.String())
}

// UnmarshalJSON re-parses the label string; unknown labels round-trip as raw.
func (rs *RosterSlot) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, _ := ParseRosterSlot(label)
	*rs = parsed
	return nil
}

var (
	currencyRe  = regexp.MustCompile(`^-?[0-9][0-9,]*$`)
	yearRe      = regexp.MustCompile(`^[0-9]{4}$`)
	multiYearRe = regexp.MustCompile(`^(PT|[0-9]{4})(\s*[+,]\s*[0-9]{4})*$`)
	monthYearRe = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+[0-9]{4}$`)
)

// ParseCurrency parses a currency-like amount: thousands separators and a
// dollar sign are stripped, a leading minus or a parenthesized form denotes a
// negative amount (GAM overage).
func ParseCurrency(s string) (int64, bool) {
	v := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = v[1 : len(v)-1]
	}
	v = strings.TrimSpace(strings.ReplaceAll(v, "$", ""))
	if v == "" || !currencyRe.MatchString(v) {
		return 0, false
	}
	if strings.HasPrefix(v, "-") {
		negative = true
		v = v[1:]
	}
	v = strings.ReplaceAll(v, ",", "")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// ParseCount parses a small non-negative integer such as an international
// slot count.
func ParseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseYears validates a contract-year phrase: a bare four-digit year, a
// known multi-year phrasing ("2026 + 2027", "PT + 2026"), or a month-year
// form ("July 2027"). The normalized (trimmed) phrase is returned; the second
// return is false when the phrase is outside the accepted forms.
func ParseYears(s string) (string, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", false
	}
	if yearRe.MatchString(v) || multiYearRe.MatchString(v) || monthYearRe.MatchString(v) {
		return v, true
	}
	return v, false
}

// HasPermanentTransferOption reports whether an option-year phrase encodes a
// loan with a permanent transfer option ("PT" prefix).
func HasPermanentTransferOption(optionYears string) bool {
	return strings.HasPrefix(strings.TrimSpace(optionYears), "PT")
}

// canonKey folds a value for enumeration lookup: lowercase, trimmed, en and
// em dashes treated as hyphens, interior whitespace collapsed.
func canonKey(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "–", "-")
	v = strings.ReplaceAll(v, "—", "-")
	return strings.Join(strings.Fields(v), " ")
}
