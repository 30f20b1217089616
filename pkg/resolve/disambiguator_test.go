package resolve

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/models"
)

func TestBatch_Choose(t *testing.T) {
	_, err := Batch{}.Choose(context.Background(), catalog.KindPlayer, "Lionel Messi", nil)
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestTerminal_Choose(t *testing.T) {
	candidates := []models.CandidateMatch{
		{CandidateID: "p1", CandidateName: "Carlos Gil", Score: 0.91},
		{CandidateID: "p2", CandidateName: "Carles Gil", Score: 0.89},
	}

	t.Run("numeric selection", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("2\n"), &out)

		idx, err := term.Choose(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Contains(t, out.String(), "C. Gil")
		assert.Contains(t, out.String(), "[2] Carles Gil (0.89)")
	})

	t.Run("none rejects all candidates", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("none\n"), &out)

		idx, err := term.Choose(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		require.NoError(t, err)
		assert.Equal(t, -1, idx)
	})

	t.Run("invalid input reprompts", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("maybe\n0\n1\n"), &out)

		idx, err := term.Choose(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		require.NoError(t, err)
		assert.Equal(t, 0, idx)
		assert.Contains(t, out.String(), "Unrecognized selection.")
	})

	t.Run("closed input stream", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader(""), &out)

		_, err := term.Choose(context.Background(), catalog.KindPlayer, "C. Gil", candidates)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("1\n"), &out)

		_, err := term.Choose(ctx, catalog.KindPlayer, "C. Gil", candidates)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
