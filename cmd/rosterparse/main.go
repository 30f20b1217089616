package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mlstools/rosterparse/config"
	"github.com/mlstools/rosterparse/pkg/catalog"
	"github.com/mlstools/rosterparse/pkg/layout"
	"github.com/mlstools/rosterparse/pkg/release"
	"github.com/mlstools/rosterparse/pkg/resolve"
	"github.com/mlstools/rosterparse/pkg/routes/health"
	"github.com/mlstools/rosterparse/pkg/routes/parse"
)

const appVersion = "dev"

func main() {
	input := flag.String("input", "", "path to the roster release PDF")
	output := flag.String("output", "", "write the release JSON to this path (default: stdout)")
	serveMode := flag.Bool("serve", false, "run the HTTP parse service instead of parsing a file")
	batch := flag.Bool("batch", false, "force non-interactive resolution even on a terminal")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Fatal("catalog load failed", zap.Error(err))
	}
	teams, players := cat.Size()
	log.Info("catalog loaded", zap.Int("teams", teams), zap.Int("players", players))

	if *serveMode {
		runServer(ctx, cfg, log, cat)
		return
	}

	if *input == "" {
		log.Fatal("missing -input: path to the roster release PDF")
	}

	dis := resolve.Detect()
	if *batch {
		dis = resolve.Batch{}
	}
	asm := newAssembler(cfg, log, cat, dis)

	result, err := asm.ParseFile(ctx, *input)
	if err != nil {
		log.Fatal("parse failed", zap.String("input", *input), zap.Error(err))
	}

	for _, w := range result.Warnings {
		log.Warn("parse warning",
			zap.String("scope", w.Scope.String()),
			zap.String("field", w.Field),
			zap.String("message", w.Message),
			zap.String("raw_value", w.RawValue))
	}

	data, err := json.MarshalIndent(result.Release, "", "  ")
	if err != nil {
		log.Fatal("encode release", zap.Error(err))
	}
	data = append(data, '\n')

	if *output == "" {
		os.Stdout.Write(data) //nolint:errcheck
		return
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatal("write output", zap.String("path", *output), zap.Error(err))
	}
	log.Info("release written",
		zap.String("path", *output),
		zap.Int("teams", len(result.Release.Teams)),
		zap.Int("warnings", len(result.Warnings)))
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	var src catalog.Source
	if cfg.CatalogFile != "" {
		src = catalog.FileSource{Path: cfg.CatalogFile}
	} else {
		src = catalog.NewASASource(catalog.ASAConfig{
			BaseURL: cfg.CatalogBaseURL,
			League:  cfg.CatalogLeague,
		})
	}

	scorer := catalog.NewScorer(catalog.ScorerConfig{
		TokenSetFloor: cfg.ScoreTokenSetFloor,
		ReorderWeight: cfg.ScoreReorderWeight,
		LengthPenalty: cfg.ScoreLengthPenalty,
	})
	return catalog.Load(ctx, src, scorer, catalog.Config{MaxCandidates: cfg.CatalogMaxMatches})
}

func newAssembler(cfg *config.Config, log *zap.Logger, cat *catalog.Catalog, dis resolve.Disambiguator) *release.Assembler {
	resolver := resolve.New(log, resolve.Config{
		HighConfidence:   cfg.ResolveHighConfidence,
		SeparationMargin: cfg.ResolveSeparationMargin,
		MinPlausibility:  cfg.ResolveMinPlausibility,
	}, dis)

	return release.New(log, cat, resolver, layout.Config{
		RowTolerance: cfg.LayoutRowTolerance,
		CellGap:      cfg.LayoutCellGap,
		WordGap:      cfg.LayoutWordGap,
	})
}

func runServer(ctx context.Context, cfg *config.Config, log *zap.Logger, cat *catalog.Catalog) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.AppName))),
	)
	otel.SetTracerProvider(tp)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	// The HTTP surface always resolves in batch mode; a request cannot wait
	// on a console prompt.
	asm := newAssembler(cfg, log, cat, resolve.Batch{})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	checker := health.NewChecker(cat, appVersion)
	checker.RegisterRoutes(e)
	parse.NewHandler(log, asm).Register(e.Group("/api/v1"))
	checker.SetReady(true)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
}
