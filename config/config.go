package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"rosterparse"`
	Port       int    `env:"PORT" env-default:"3004"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	HttpServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerIdleTimeoutSeconds  int `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB

	// Candidate catalog
	CatalogFile       string `env:"CATALOG_FILE" env-default:""` // local JSON catalog; when set, no network fetch
	CatalogBaseURL    string `env:"CATALOG_BASE_URL" env-default:"https://app.americansocceranalysis.com/api/v1"`
	CatalogLeague     string `env:"CATALOG_LEAGUE" env-default:"mls"`
	CatalogMaxMatches int    `env:"CATALOG_MAX_MATCHES" env-default:"10"`

	// Entity resolution thresholds. Policy knobs, tuned against labeled
	// sample releases.
	ResolveHighConfidence   float64 `env:"RESOLVE_HIGH_CONFIDENCE" env-default:"0.86" validate:"gt=0,lte=1"`
	ResolveSeparationMargin float64 `env:"RESOLVE_SEPARATION_MARGIN" env-default:"0.05" validate:"gte=0,lte=1"`
	ResolveMinPlausibility  float64 `env:"RESOLVE_MIN_PLAUSIBILITY" env-default:"0.60" validate:"gt=0,lte=1"`

	// Similarity weighting
	ScoreTokenSetFloor float64 `env:"SCORE_TOKEN_SET_FLOOR" env-default:"0.97" validate:"gte=0,lte=1"`
	ScoreReorderWeight float64 `env:"SCORE_REORDER_WEIGHT" env-default:"0.98" validate:"gte=0,lte=1"`
	ScoreLengthPenalty float64 `env:"SCORE_LENGTH_PENALTY" env-default:"0.15" validate:"gte=0,lte=1"`

	// Layout geometry
	LayoutRowTolerance float64 `env:"LAYOUT_ROW_TOLERANCE" env-default:"2.0" validate:"gt=0"`
	LayoutCellGap      float64 `env:"LAYOUT_CELL_GAP" env-default:"18.0" validate:"gt=0"`
	LayoutWordGap      float64 `env:"LAYOUT_WORD_GAP" env-default:"1.2" validate:"gt=0"`
}

// Load reads configuration from the environment (a .env file is honored when
// present) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks threshold and geometry constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.ResolveMinPlausibility > c.ResolveHighConfidence {
		return fmt.Errorf("validate config: RESOLVE_MIN_PLAUSIBILITY (%.2f) must not exceed RESOLVE_HIGH_CONFIDENCE (%.2f)",
			c.ResolveMinPlausibility, c.ResolveHighConfidence)
	}
	return nil
}
