package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbfiller/dbfiller/internal/config"
	"github.com/dbfiller/dbfiller/internal/emit"
	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/keys"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/rowgen"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/synth"
)

var (
	generateConfigPath string
	generateSeed       int64
	generateDebug      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [config.toml]",
	Short: "generate a synthetic dataset from a schema and emit it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateConfigPath, "config", "", "path to TOML config file")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 1, "master RNG seed, for reproducible runs")
	generateCmd.Flags().BoolVar(&generateDebug, "debug", false, "dump the resolved schema before generating")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfgPath := generateConfigPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return fmt.Errorf("config file required: dbfiller generate <config.toml> or --config <config.toml>")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	sch, err := schema.LoadFile(cfg.ResolvePath(cfg.Schema))
	if err != nil {
		return err
	}
	if generateDebug {
		log.Print(sch.Dump())
	}

	synthOpts, err := cfg.BuildSynthOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	progress := isatty.IsTerminal(os.Stdout.Fd())
	log.Printf("dbfiller — generating data for %d tables (workers=%d, seed=%d)", len(sch.Tables), cfg.Workers, generateSeed)

	engine := rowgen.New(sch, synth.New(synthOpts, expr.DefaultCache), keys.NewManager(), rng.NewMaster(uint64(generateSeed)), expr.DefaultCache, rowgen.Options{
		NumRows:          cfg.NumRows,
		NumRowsPerTable:  cfg.NumRowsPerTable,
		RunRepair:        cfg.RunRepair,
		RowWorkers:       cfg.Workers,
		LevelConcurrency: cfg.Workers,
	})

	ds, err := engine.Run()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if progress {
		log.Printf("generation finished in %s, emitting as %s", time.Since(start).Round(time.Millisecond), cfg.OutputFormat)
	}

	return emitDataset(sch, ds, cfg)
}

func emitDataset(sch *schema.Schema, ds *rowgen.Dataset, cfg *config.Config) error {
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	switch cfg.OutputFormat {
	case "sql":
		f, err := os.Create(outputPath(cfg, "dataset.sql"))
		if err != nil {
			return err
		}
		defer f.Close()
		return emit.SQL(f, sch, ds, emit.Options{MaxRowsPerInsert: cfg.MaxRowsPerInsert})
	case "csv":
		return emit.CSV(sch, ds, fileOpener(cfg, "csv"))
	case "json":
		return emit.JSON(sch, ds, fileOpener(cfg, "json"))
	default:
		return fmt.Errorf("unsupported output_format %q", cfg.OutputFormat)
	}
}

func fileOpener(cfg *config.Config, ext string) emit.CSVWriterFor {
	return func(table string) (io.WriteCloser, error) {
		return os.Create(outputPath(cfg, table+"."+ext))
	}
}

func outputPath(cfg *config.Config, name string) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}
