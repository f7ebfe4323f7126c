package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/shelfwatch/internal/config"
	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/pipeline"
	"github.com/andresuchdata/shelfwatch/internal/repository"
	"github.com/andresuchdata/shelfwatch/internal/service"
	"github.com/andresuchdata/shelfwatch/internal/storage"
	"github.com/andresuchdata/shelfwatch/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newSourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Usage:   "Snapshot source (file or postgres)",
			EnvVars: []string{"SOURCE_KIND"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory containing inventory_snapshot.csv, sales.csv, supply.json, catalog.csv",
			EnvVars: []string{"SOURCE_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:  "fetch-prefix",
			Usage: "Download snapshot files from object storage under this prefix before evaluating",
		},
	}
}

func newPolicyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "risk-threshold", Usage: "Risk score (0-100) at or above which a position is replenished"},
		&cli.Float64Flag{Name: "safety-buffer-days", Usage: "Extra days of cover beyond lead time"},
		&cli.IntFlag{Name: "velocity-window-days", Usage: "Trailing days used for the sales moving average"},
		&cli.Float64Flag{Name: "reorder-multiple", Usage: "Pack size order quantities round up to"},
		&cli.Float64Flag{Name: "min-order-qty", Usage: "Minimum order quantity"},
		&cli.Float64Flag{Name: "max-order-qty", Usage: "Maximum order quantity"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "replenish",
		Usage: "Evaluate stockout risk and suggested reorder quantities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "evaluate",
				Usage: "Evaluate every inventory position in the snapshot once",
				Flags: append(append(newSourceFlags(), newPolicyFlags()...),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (table or json)",
						Value: "table",
					},
					&cli.StringFlag{
						Name:  "action",
						Usage: "Only print positions with this decision (replenish or noop)",
					},
					&cli.BoolFlag{
						Name:  "alerts",
						Usage: "Print alert text for positions that need replenishment",
					},
				),
				Action: runEvaluate,
			},
			{
				Name:  "fetch",
				Usage: "Download snapshot files from object storage into the data directory",
				Flags: append(newSourceFlags(), &cli.StringFlag{
					Name:  "prefix",
					Usage: "Object key prefix of the snapshot",
				}),
				Action: runFetch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("replenish failed")
	}
}

// loadConfig applies command-line flags on top of the environment config.
func loadConfig(c *cli.Context) *config.Config {
	cfg := config.FromViper(config.NewViper())
	if c.IsSet("source") {
		cfg.Source.Kind = c.String("source")
	}
	if c.IsSet("data-dir") {
		cfg.Source.DataDir = c.String("data-dir")
	}
	return cfg
}

// policyFromFlags overrides base with any policy flag that was set.
func policyFromFlags(c *cli.Context, base domain.PolicyParameters) domain.PolicyParameters {
	p := base
	if c.IsSet("risk-threshold") {
		p.RiskThreshold = c.Float64("risk-threshold")
	}
	if c.IsSet("safety-buffer-days") {
		p.SafetyBufferDays = c.Float64("safety-buffer-days")
	}
	if c.IsSet("velocity-window-days") {
		p.VelocityWindowDays = c.Int("velocity-window-days")
	}
	if c.IsSet("reorder-multiple") {
		p.ReorderMultiple = c.Float64("reorder-multiple")
	}
	if c.IsSet("min-order-qty") {
		p.MinOrderQty = c.Float64("min-order-qty")
	}
	if c.IsSet("max-order-qty") {
		p.MaxOrderQty = c.Float64("max-order-qty")
	}
	return p
}

func fetchSnapshot(ctx context.Context, cfg *config.Config, prefix string) error {
	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	config.EnsureDir(cfg.Source.DataDir)

	n, err := storage.FetchSnapshot(ctx, client, prefix, cfg.Source.DataDir,
		repository.InventoryFile, repository.SalesFile, repository.SupplyFile, repository.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	logger.Log.Info().Int("files", n).Str("prefix", prefix).Str("dir", cfg.Source.DataDir).Msg("snapshot fetched")
	return nil
}

func runFetch(c *cli.Context) error {
	cfg := loadConfig(c)
	prefix := c.String("prefix")
	if prefix == "" {
		prefix = cfg.Storage.Prefix
	}
	return fetchSnapshot(c.Context, cfg, prefix)
}

func runEvaluate(c *cli.Context) error {
	cfg := loadConfig(c)

	if prefix := c.String("fetch-prefix"); prefix != "" {
		if cfg.Source.Kind != repository.SourceFile {
			return fmt.Errorf("--fetch-prefix requires the file source")
		}
		if err := fetchSnapshot(c.Context, cfg, prefix); err != nil {
			return err
		}
	}

	policy := policyFromFlags(c, cfg.Policy)
	if err := policy.Validate(); err != nil {
		return err
	}

	filter := domain.EvaluationFilter{}
	if raw := c.String("action"); raw != "" {
		action, ok := domain.ParseAction(raw)
		if !ok {
			return fmt.Errorf("unknown action %q", raw)
		}
		filter.Action = action
	}

	source, closeSource, err := repository.OpenSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	svc := service.NewReplenishmentService(source, nil, pipeline.NewWorker(pipeline.Config{WorkerCount: cfg.Pipeline.WorkerCount}))

	evals, err := svc.Evaluate(c.Context, policy, filter)
	if err != nil {
		return err
	}

	out := c.App.Writer
	switch c.String("format") {
	case "json":
		if err := writeJSON(out, evals, service.Summarize(evals)); err != nil {
			return err
		}
	case "table", "":
		if err := writeTable(out, evals); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}

	if c.Bool("alerts") {
		return writeAlerts(out, evals)
	}
	return nil
}
