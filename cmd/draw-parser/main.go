package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/draw-parser/internal/batch"
	"github.com/a3tai/draw-parser/internal/config"
	"github.com/a3tai/draw-parser/internal/logging"
	"github.com/a3tai/draw-parser/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[0], os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code
func run(ctx context.Context, program string, args []string, stdout io.Writer) int {
	cfg, err := config.Load(program, args)
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}

	logging.Setup(cfg.LogLevel, false)
	if version != "dev" {
		cfg.Version = version
	}
	log.Debug().Str("config", cfg.String()).Msg("Starting DRAW parser")

	opts, err := cfg.EngineOptions()
	if err != nil {
		log.Error().Err(err).Msg("Invalid extraction settings")
		return 2
	}
	engine, err := pdf.NewEngine(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create extraction engine")
		return 2
	}

	runner := batch.NewRunner(engine, batch.Options{
		OutDir:   cfg.OutDir,
		ForceOCR: cfg.ForceOCR,
		Workers:  cfg.Workers,
	})

	batchRun := cfg.Batch
	if !batchRun && singleDirectory(cfg.Inputs) {
		log.Debug().Str("path", cfg.Inputs[0]).Msg("Input is a directory, running as a batch")
		batchRun = true
	}

	switch {
	case !batchRun:
		return runSingle(cfg, runner, stdout)
	case cfg.IsDirectoriesMode():
		return runDirectories(ctx, cfg, runner, stdout)
	default:
		return runRecursive(ctx, cfg, runner)
	}
}

// singleDirectory reports whether inputs is exactly one existing directory
func singleDirectory(inputs []string) bool {
	if len(inputs) != 1 {
		return false
	}
	info, err := os.Stat(inputs[0])
	return err == nil && info.IsDir()
}

func runSingle(cfg *config.Config, runner *batch.Runner, stdout io.Writer) int {
	if len(cfg.Inputs) != 1 {
		log.Error().Int("inputs", len(cfg.Inputs)).Msg("Expected exactly one PDF path (use --batch for directories)")
		return 2
	}

	outPath, err := runner.ProcessFile(cfg.Inputs[0])
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Inputs[0]).Msg("Failed to parse DRAW")
		return 1
	}
	fmt.Fprintln(stdout, outPath)
	return 0
}

func runRecursive(ctx context.Context, cfg *config.Config, runner *batch.Runner) int {
	if len(cfg.Inputs) != 1 {
		log.Error().Int("inputs", len(cfg.Inputs)).Msg("Expected exactly one input directory")
		return 2
	}

	if _, err := runner.RunRecursive(ctx, cfg.Inputs[0]); err != nil {
		log.Error().Err(err).Msg("Batch failed")
		return 1
	}
	return 0
}

func runDirectories(ctx context.Context, cfg *config.Config, runner *batch.Runner, stdout io.Writer) int {
	if len(cfg.Inputs) == 0 {
		log.Error().Msg("Expected one or more base directories")
		return 2
	}

	report, err := runner.RunDirectories(ctx, cfg.Inputs)
	if err != nil {
		log.Error().Err(err).Msg("Batch failed")
		return 1
	}

	if report.SkippedCount == 0 {
		log.Info().Int("directories", report.TotalDirectoriesProcessed).Msg("All detected documents were parsed successfully")
		return 0
	}
	for _, s := range report.SkippedDocuments {
		log.Warn().Str("type", string(s.Type)).Str("path", s.Path).Str("reason", s.Reason).Msg("Could not be parsed")
	}
	if err := report.Write(cfg.SkipReport); err != nil {
		log.Error().Err(err).Str("path", cfg.SkipReport).Msg("Failed to write skip report")
		return 1
	}
	fmt.Fprintln(stdout, cfg.SkipReport)
	return 0
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "DRAW Parser\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
