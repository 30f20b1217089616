package resolve

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/models"
)

// ErrNoChannel signals that no confirmation channel is available and the
// resolver should leave the name unresolved instead of blocking.
var ErrNoChannel = errors.New("no interactive confirmation channel")

// Disambiguator decides genuinely ambiguous matches. Choose returns the index
// of the confirmed candidate, or a negative index for "none of these".
type Disambiguator interface {
	Choose(ctx context.Context, kind catalog.Kind, rawName string, candidates []models.CandidateMatch) (int, error)
}

// Batch is the non-interactive disambiguator: it always reports the absence
// of a confirmation channel, keeping batch runs deterministic.
type Batch struct{}

// Choose always returns ErrNoChannel.
func (Batch) Choose(context.Context, catalog.Kind, string, []models.CandidateMatch) (int, error) {
	return -1, ErrNoChannel
}

// Terminal prompts a human on the attached console, synchronously. The whole
// pipeline pauses while the prompt is open.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal disambiguator over the given streams.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Choose presents the raw name and the tied candidates, then reads a
// selection index or "none".
func (t *Terminal) Choose(ctx context.Context, kind catalog.Kind, rawName string, candidates []models.CandidateMatch) (int, error) {
	fmt.Fprintf(t.out, "\nAmbiguous %s name: %q\n", kind, rawName)
	for i, c := range candidates {
		fmt.Fprintf(t.out, "  [%d] %s (%.2f)\n", i+1, c.CandidateName, c.Score)
	}

	for {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		fmt.Fprintf(t.out, "Select 1-%d or \"none\": ", len(candidates))

		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return -1, fmt.Errorf("read selection: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))

		switch {
		case answer == "none" || answer == "n":
			return -1, nil
		default:
			if idx, convErr := strconv.Atoi(answer); convErr == nil && idx >= 1 && idx <= len(candidates) {
				return idx - 1, nil
			}
		}
		fmt.Fprintln(t.out, "Unrecognized selection.")
		if err != nil {
			return -1, fmt.Errorf("read selection: %w", err)
		}
	}
}

// Detect returns a Terminal bound to stdin/stderr when a controlling console
// is attached, otherwise Batch. Batch mode never blocks on a prompt.
func Detect() Disambiguator {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewTerminal(os.Stdin, os.Stderr)
	}
	return Batch{}
}
