package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultASABaseURL = "https://app.americansocceranalysis.com/api/v1"

// ASAConfig controls how the catalog client reaches the American Soccer
// Analysis API.
type ASAConfig struct {
	BaseURL    string
	League     string // e.g. "mls"
	HTTPClient *http.Client
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ASASource fetches canonical team and player names with their stable IDs
// from the American Soccer Analysis API.
type ASASource struct {
	baseURL    string
	league     string
	httpClient httpDoer
}

// NewASASource constructs a source with the provided configuration.
func NewASASource(cfg ASAConfig) *ASASource {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultASABaseURL
	}
	league := cfg.League
	if league == "" {
		league = "mls"
	}
	var client httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ASASource{baseURL: baseURL, league: league, httpClient: client}
}

type asaTeam struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

type asaPlayer struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// Load fetches both halves of the catalog.
func (s *ASASource) Load(ctx context.Context) ([]Entry, []Entry, error) {
	var asaTeams []asaTeam
	if err := s.get(ctx, "/teams", &asaTeams); err != nil {
		return nil, nil, fmt.Errorf("fetch teams: %w", err)
	}
	var asaPlayers []asaPlayer
	if err := s.get(ctx, "/players", &asaPlayers); err != nil {
		return nil, nil, fmt.Errorf("fetch players: %w", err)
	}

	teams := make([]Entry, 0, len(asaTeams))
	for _, t := range asaTeams {
		teams = append(teams, Entry{ID: t.TeamID, Name: t.TeamName})
	}
	players := make([]Entry, 0, len(asaPlayers))
	for _, p := range asaPlayers {
		players = append(players, Entry{ID: p.PlayerID, Name: p.PlayerName})
	}
	return teams, players, nil
}

func (s *ASASource) get(ctx context.Context, path string, out any) error {
	url := s.baseURL + "/" + s.league + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("asa: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
