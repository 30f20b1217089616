// Package models defines the typed record tree produced by a parse run, the
// warning ledger accumulated alongside it, and the ephemeral candidate-match
// value used during entity resolution.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mlstools/rosterparse/pkg/grammar"
)

// Date is a calendar date serialized as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON serializes the date as a bare calendar date string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// UnmarshalJSON parses a bare calendar date string; empty means unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid release date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Player is one rostered player and the details of their current contract.
// Nullable fields stay nil when the source document does not state them or
// when the stated value failed its grammar (recorded in the ledger).
type Player struct {
	ID                                 *string                    `json:"id"`
	Name                               string                     `json:"name"`
	RosterSlot                         grammar.RosterSlot         `json:"roster_slot"`
	RosterDesignation                  *grammar.RosterDesignation `json:"roster_designation"`
	CurrentStatus                      *grammar.CurrentStatus     `json:"current_status"`
	ContractThrough                    *string                    `json:"contract_through"`
	OptionYears                        *string                    `json:"option_years"`
	PermanentTransferOption            *bool                      `json:"permanent_transfer_option"`
	InternationalSlot                  bool                       `json:"international_slot"`
	ConvertibleWithTAM                 *bool                      `json:"convertible_with_tam"`
	Unavailable                        bool                       `json:"unavailable"`
	CanadianInternationalSlotExemption *bool                      `json:"canadian_international_slot_exemption"`
}

// Team is one club's roster snapshot. ID is non-nil only when the resolver
// assigned or confirmed it.
type Team struct {
	ID                      *string                          `json:"id"`
	Name                    string                           `json:"name"`
	RosterConstructionModel *grammar.RosterConstructionModel `json:"roster_construction_model"`
	Players                 []Player                         `json:"players"`
	InternationalSlots      int                              `json:"international_slots"`
	GAMAvailable            *int64                           `json:"gam_available"`
}

// ReleaseDocument is the final tree for one published roster snapshot.
// Team order mirrors document order.
type ReleaseDocument struct {
	ReleaseDate Date   `json:"release_date"`
	Teams       []Team `json:"teams"`
}
