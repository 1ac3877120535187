package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/a3tai/draw-parser/internal/config"
	"github.com/a3tai/draw-parser/internal/logging"
	"github.com/a3tai/draw-parser/internal/mcp"
	"github.com/a3tai/draw-parser/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	logging.Setup(cfg.LogLevel, true)

	if version != "dev" {
		cfg.Version = version
	}
	cfg.ServerName = "draw-mcp"

	server, err := newServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create MCP server")
		os.Exit(1)
	}

	// In stdio mode the parent process controls our lifecycle
	if err := server.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}

func newServer(cfg *config.Config) (*mcp.Server, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	engine, err := pdf.NewEngine(opts)
	if err != nil {
		return nil, err
	}
	return mcp.NewServer(cfg, engine)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "DRAW MCP Server\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
