package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/models"
)

// recordingDisambiguator captures every Choose call and replays a scripted
// answer.
type recordingDisambiguator struct {
	calls   int
	gotName string
	gotTied []models.CandidateMatch
	choice  int
	err     error
}

func (d *recordingDisambiguator) Choose(_ context.Context, _ catalog.Kind, rawName string, candidates []models.CandidateMatch) (int, error) {
	d.calls++
	d.gotName = rawName
	d.gotTied = candidates
	return d.choice, d.err
}

func candidate(id, name string, score float64) models.CandidateMatch {
	return models.CandidateMatch{CandidateID: id, CandidateName: name, Score: score}
}

func TestResolver_AutoAssign(t *testing.T) {
	r := New(zap.NewNop(), DefaultConfig(), Batch{})

	t.Run("confident single candidate", func(t *testing.T) {
		out := r.Resolve(context.Background(), catalog.KindTeam, "Inter Miami",
			[]models.CandidateMatch{candidate("t1", "Inter Miami CF", 0.95)})
		require.NotNil(t, out.ID)
		assert.Equal(t, "t1", *out.ID)
		assert.Equal(t, "Inter Miami CF", out.CanonicalName)
		assert.Empty(t, out.Note)
	})

	t.Run("confident leader with clear separation", func(t *testing.T) {
		out := r.Resolve(context.Background(), catalog.KindPlayer, "Lionel Messi",
			[]models.CandidateMatch{
				candidate("p1", "Lionel Messi", 0.97),
				candidate("p2", "Lionel Moreno", 0.70),
			})
		require.NotNil(t, out.ID)
		assert.Equal(t, "p1", *out.ID)
	})
}

func TestResolver_NoConfidentMatch(t *testing.T) {
	dis := &recordingDisambiguator{}
	r := New(zap.NewNop(), DefaultConfig(), dis)

	t.Run("best score below plausibility", func(t *testing.T) {
		out := r.Resolve(context.Background(), catalog.KindPlayer, "Nonexistent Player",
			[]models.CandidateMatch{candidate("p1", "Lionel Messi", 0.40)})
		assert.Nil(t, out.ID)
		assert.Equal(t, "Nonexistent Player", out.CanonicalName)
		assert.Equal(t, "no confident match (best score 0.40)", out.Note)
	})

	t.Run("no candidates at all", func(t *testing.T) {
		out := r.Resolve(context.Background(), catalog.KindPlayer, "Nonexistent Player", nil)
		assert.Nil(t, out.ID)
		assert.Equal(t, "no confident match (best score 0.00)", out.Note)
	})

	assert.Zero(t, dis.calls, "implausible names never reach confirmation")
}

func TestResolver_AmbiguityGoesToConfirmation(t *testing.T) {
	candidates := []models.CandidateMatch{
		candidate("p1", "Carlos Gil", 0.91),
		candidate("p2", "Carles Gil", 0.89),
		candidate("p3", "Carlos Vela", 0.65),
	}

	t.Run("reviewer picks a candidate", func(t *testing.T) {
		dis := &recordingDisambiguator{choice: 1}
		r := New(zap.NewNop(), DefaultConfig(), dis)

		out := r.Resolve(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		require.NotNil(t, out.ID)
		assert.Equal(t, "p2", *out.ID)
		assert.Equal(t, "Carles Gil", out.CanonicalName)

		assert.Equal(t, 1, dis.calls, "confirmation is invoked exactly once per name")
		assert.Equal(t, "C. Gil", dis.gotName)
		// Only the candidates inside the separation margin are presented.
		require.Len(t, dis.gotTied, 2)
		assert.Equal(t, "p1", dis.gotTied[0].CandidateID)
		assert.Equal(t, "p2", dis.gotTied[1].CandidateID)
	})

	t.Run("reviewer rejects everything", func(t *testing.T) {
		dis := &recordingDisambiguator{choice: -1}
		r := New(zap.NewNop(), DefaultConfig(), dis)

		out := r.Resolve(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		assert.Nil(t, out.ID)
		assert.Equal(t, "all 2 candidates rejected by reviewer", out.Note)
	})

	t.Run("batch mode leaves the name unresolved", func(t *testing.T) {
		r := New(zap.NewNop(), DefaultConfig(), Batch{})

		out := r.Resolve(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		assert.Nil(t, out.ID)
		assert.Equal(t, "C. Gil", out.CanonicalName)
		assert.Equal(t, "ambiguous match left unresolved (2 candidates, top score 0.91)", out.Note)
	})

	t.Run("confirmation failure is recorded", func(t *testing.T) {
		dis := &recordingDisambiguator{err: errors.New("pipe closed")}
		r := New(zap.NewNop(), DefaultConfig(), dis)

		out := r.Resolve(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		assert.Nil(t, out.ID)
		assert.Contains(t, out.Note, "pipe closed")
	})
}

func TestResolver_SinglePlausibleBelowHighConfidence(t *testing.T) {
	// One plausible candidate that does not clear the confident band still
	// needs confirmation rather than a silent guess.
	dis := &recordingDisambiguator{choice: 0}
	r := New(zap.NewNop(), DefaultConfig(), dis)

	out := r.Resolve(context.Background(), catalog.KindTeam, "Sporting KC",
		[]models.CandidateMatch{candidate("t1", "Sporting Kansas City", 0.72)})
	require.NotNil(t, out.ID)
	assert.Equal(t, "t1", *out.ID)
	assert.Equal(t, 1, dis.calls)
	require.Len(t, dis.gotTied, 1)
}

func TestResolver_ConfidentButCrowded(t *testing.T) {
	// A confident top score with a runner-up inside the margin is still
	// ambiguous.
	dis := &recordingDisambiguator{choice: 0}
	r := New(zap.NewNop(), DefaultConfig(), dis)

	out := r.Resolve(context.Background(), catalog.KindPlayer, "Diego Rossi",
		[]models.CandidateMatch{
			candidate("p1", "Diego Rossi", 0.93),
			candidate("p2", "Diego Rossa", 0.90),
		})
	require.NotNil(t, out.ID)
	assert.Equal(t, "p1", *out.ID)
	assert.Equal(t, 1, dis.calls)
}
