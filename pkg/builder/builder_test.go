package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/grammar"
	"github.com/mlstools/rosterparse/pkg/layout"
	"github.com/mlstools/rosterparse/pkg/models"
)

func row(kind layout.RowKind, cells ...string) layout.ClassifiedRow {
	return layout.ClassifiedRow{Kind: kind, Cells: cells}
}

func noiseRow(reason string, cells ...string) layout.ClassifiedRow {
	return layout.ClassifiedRow{Kind: layout.KindNoise, Cells: cells, Reason: reason}
}

func fullTeamPage() []layout.ClassifiedRow {
	return []layout.ClassifiedRow{
		row(layout.KindTeamHeading, "Inter Miami CF"),
		row(layout.KindTeamModel, "Designated Player Model"),
		row(layout.KindColumnHeader, "Player", "Roster Slot", "Roster Designation", "Current Status", "Contract Through", "Option Years"),
		row(layout.KindPlayerRow, "Lionel Messi", "Senior Roster", "Designated Player", "-", "2026", "2027"),
		row(layout.KindPlayerRow, "Benjamin Cremaschi", "Supplemental Spot 31", "Homegrown Player", "-", "2025", "-"),
		row(layout.KindPlayerRow, "Gregore", "Senior Roster", "-", "Unavailable - Injured List", "2025", "-"),
		row(layout.KindPlayerRow, "Marcelo Weigandt", "Senior Roster", "-", "Loan Player", "2025", "PT + 2026"),
		row(layout.KindSidebarHeader, "International Slots (8)"),
		row(layout.KindSidebarRow, "Gregore"),
		row(layout.KindSidebarRow, "Marcelo Weigandt +"),
		row(layout.KindSidebarHeader, "Designated Players"),
		row(layout.KindSidebarRow, "Lionel Messi ^"),
		row(layout.KindSidebarHeader, "Unavailable Players"),
		row(layout.KindSidebarRow, "Gregore"),
		row(layout.KindSidebarRow, "Marcelo Weigandt"),
		row(layout.KindTeamSummaryRow, "International Slots: 8", "GAM Available: $1,206,065"),
	}
}

func TestBuild_FullTeam(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	doc := b.Build([][]layout.ClassifiedRow{fullTeamPage()}, ledger)

	require.Len(t, doc.Teams, 1)
	team := doc.Teams[0]
	assert.Equal(t, "Inter Miami CF", team.Name)
	require.NotNil(t, team.RosterConstructionModel)
	assert.Equal(t, grammar.ModelDesignatedPlayer, *team.RosterConstructionModel)
	assert.Equal(t, 8, team.InternationalSlots)
	require.NotNil(t, team.GAMAvailable)
	assert.Equal(t, int64(1206065), *team.GAMAvailable)
	require.Len(t, team.Players, 4)

	messi := team.Players[0]
	assert.Equal(t, "Lionel Messi", messi.Name)
	assert.Equal(t, grammar.SlotSenior, messi.RosterSlot.Kind)
	require.NotNil(t, messi.RosterDesignation)
	assert.Equal(t, grammar.DesignationDP, *messi.RosterDesignation)
	assert.Nil(t, messi.CurrentStatus, "nullish cells stay nil")
	require.NotNil(t, messi.ContractThrough)
	assert.Equal(t, "2026", *messi.ContractThrough)
	require.NotNil(t, messi.ConvertibleWithTAM)
	assert.False(t, *messi.ConvertibleWithTAM, "caret marker in the designated side table")

	cremaschi := team.Players[1]
	assert.Equal(t, grammar.SlotSupplementalSpot, cremaschi.RosterSlot.Kind)
	assert.Equal(t, 31, cremaschi.RosterSlot.Spot)
	assert.Nil(t, cremaschi.ConvertibleWithTAM, "only designated players carry the flag")

	gregore := team.Players[2]
	assert.True(t, gregore.Unavailable)
	assert.True(t, gregore.InternationalSlot)
	require.NotNil(t, gregore.CanadianInternationalSlotExemption)
	assert.False(t, *gregore.CanadianInternationalSlotExemption)

	weigandt := team.Players[3]
	assert.True(t, weigandt.InternationalSlot)
	require.NotNil(t, weigandt.CanadianInternationalSlotExemption)
	assert.True(t, *weigandt.CanadianInternationalSlotExemption, "plus marker in the international side table")
	require.NotNil(t, weigandt.PermanentTransferOption)
	assert.True(t, *weigandt.PermanentTransferOption, "PT option years on a loan player")
	assert.True(t, weigandt.Unavailable, "listed in the unavailable side table")

	// Weigandt's status says Loan Player while the side table lists him as
	// unavailable; that disagreement is the only warning in this document.
	warnings := ledger.All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "unavailable", warnings[0].Field)
	require.NotNil(t, warnings[0].Scope.Player)
	assert.Equal(t, 3, *warnings[0].Scope.Player)
}

func TestBuild_Idempotent(t *testing.T) {
	b := New(zap.NewNop())
	pages := [][]layout.ClassifiedRow{fullTeamPage()}

	first := b.Build(pages, models.NewLedger())
	secondLedger := models.NewLedger()
	second := b.Build(pages, secondLedger)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, secondLedger.Len())
}

func TestBuild_BadFieldValuesWarnOnce(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindPlayerRow, "Riqui Puig", "Senior Roster", "Designated Playr", "Suspended", "thru 2026ish", "-"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
	}}
	doc := b.Build(pages, ledger)

	require.Len(t, doc.Teams, 1)
	require.Len(t, doc.Teams[0].Players, 1)
	p := doc.Teams[0].Players[0]

	// Raw values are retained alongside their warnings.
	require.NotNil(t, p.RosterDesignation)
	assert.Equal(t, grammar.RosterDesignation("Designated Playr"), *p.RosterDesignation)
	require.NotNil(t, p.CurrentStatus)
	assert.Equal(t, grammar.CurrentStatus("Suspended"), *p.CurrentStatus)
	require.NotNil(t, p.ContractThrough)
	assert.Equal(t, "thru 2026ish", *p.ContractThrough)

	warnings := ledger.All()
	require.Len(t, warnings, 3)
	fields := []string{warnings[0].Field, warnings[1].Field, warnings[2].Field}
	assert.ElementsMatch(t, []string{"roster_designation", "current_status", "contract_through"}, fields)
	for _, w := range warnings {
		require.NotNil(t, w.Scope.Team)
		assert.Equal(t, 0, *w.Scope.Team)
		require.NotNil(t, w.Scope.Player)
		assert.Equal(t, 0, *w.Scope.Player)
	}
}

func TestBuild_MissingRosterSlot(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindPlayerRow, "Riqui Puig", "-"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
	}}
	doc := b.Build(pages, ledger)

	require.Len(t, doc.Teams[0].Players, 1)
	assert.Equal(t, grammar.RosterSlotKind(""), doc.Teams[0].Players[0].RosterSlot.Kind)

	warnings := ledger.All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "roster_slot", warnings[0].Field)
	assert.Equal(t, "missing roster slot", warnings[0].Message)
}

func TestBuild_TruncatedDocument(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "Atlanta United"),
		row(layout.KindPlayerRow, "Miguel Almiron", "Senior Roster", "Designated Player", "-", "2026", "-"),
	}}
	doc := b.Build(pages, ledger)

	require.Len(t, doc.Teams, 1, "partial team is retained")
	assert.Len(t, doc.Teams[0].Players, 1)

	warnings := ledger.All()
	require.Len(t, warnings, 1)
	assert.Nil(t, warnings[0].Scope.Team, "truncation is a document-level warning")
	assert.Contains(t, warnings[0].Message, "ended mid-team")
}

func TestBuild_TeamWithoutSummaryRow(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "Atlanta United"),
		row(layout.KindSidebarHeader, "International Slots (6)"),
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
	}}
	doc := b.Build(pages, ledger)

	require.Len(t, doc.Teams, 2)
	assert.Equal(t, 6, doc.Teams[0].InternationalSlots, "side table count backfills a missing summary")
	assert.Equal(t, 5, doc.Teams[1].InternationalSlots)

	warnings := ledger.ForTeam(0)
	require.Len(t, warnings, 1)
	assert.Equal(t, "team ended without a summary row", warnings[0].Message)
}

func TestBuild_DuplicateTeamHeading(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
	}}
	doc := b.Build(pages, ledger)

	assert.Len(t, doc.Teams, 2, "both occurrences are kept")
	found := false
	for _, w := range ledger.All() {
		if w.Message == "duplicate team heading" {
			found = true
			assert.Equal(t, "LA Galaxy", w.RawValue)
		}
	}
	assert.True(t, found)
}

func TestBuild_RowsOutsideAnyTeam(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindPlayerRow, "Lionel Messi", "Senior Roster"),
		row(layout.KindTeamSummaryRow, "International Slots: 8", "GAM Available: $1"),
		row(layout.KindSidebarHeader, "Designated Players"),
	}}
	doc := b.Build(pages, ledger)

	assert.Empty(t, doc.Teams)
	assert.Equal(t, 3, ledger.Len())
	for _, w := range ledger.All() {
		assert.Nil(t, w.Scope.Team)
	}
}

func TestBuild_NoiseReasonBecomesWarning(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "LA Galaxy"),
		noiseRow("single-cell row is ambiguous between team heading and data row", "2026 Expansion Draft"),
		noiseRow("", "Page 3"),
		row(layout.KindTeamSummaryRow, "International Slots: 5", "GAM Available: $100,000"),
	}}
	b.Build(pages, ledger)

	warnings := ledger.ForTeam(0)
	require.Len(t, warnings, 1, "silent noise is discarded without a warning")
	assert.Equal(t, "2026 Expansion Draft", warnings[0].RawValue)
}

func TestBuild_MalformedSummaryValues(t *testing.T) {
	b := New(zap.NewNop())
	ledger := models.NewLedger()

	pages := [][]layout.ClassifiedRow{{
		row(layout.KindTeamHeading, "LA Galaxy"),
		row(layout.KindTeamSummaryRow, "International Slots: many", "GAM Available: lots"),
	}}
	doc := b.Build(pages, ledger)

	require.Len(t, doc.Teams, 1)
	assert.Equal(t, 0, doc.Teams[0].InternationalSlots)
	assert.Nil(t, doc.Teams[0].GAMAvailable)

	warnings := ledger.ForTeam(0)
	require.Len(t, warnings, 2)
	assert.ElementsMatch(t,
		[]string{"international_slots", "gam_available"},
		[]string{warnings[0].Field, warnings[1].Field})
}
