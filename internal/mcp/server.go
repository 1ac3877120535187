package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/draw-parser/internal/config"
	"github.com/a3tai/draw-parser/internal/descriptions"
	"github.com/a3tai/draw-parser/internal/draw"
	"github.com/a3tai/draw-parser/internal/output"
	"github.com/a3tai/draw-parser/internal/pdf"
)

const (
	ToolParseFile = "draw_parse_file"
	ToolParseText = "draw_parse_text"
)

// Engine is the part of the extraction engine the tools call
type Engine interface {
	Extract(path string, forceOCR bool) (*pdf.Result, error)
	ParseText(raw string) *draw.Record
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, engine Engine) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		engine:    engine,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	parseFileTool := mcp.NewTool(
		ToolParseFile,
		mcp.WithDescription(descriptions.DrawParseFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the DRAW PDF file"),
		),
		mcp.WithBoolean("force_ocr",
			mcp.Description("Use only OCR for the text path"),
		),
	)
	s.mcpServer.AddTool(parseFileTool, s.handleParseFile)

	parseTextTool := mcp.NewTool(
		ToolParseText,
		mcp.WithDescription(descriptions.DrawParseTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain text of a DD2977 worksheet"),
		),
	)
	s.mcpServer.AddTool(parseTextTool, s.handleParseText)
}

func (s *Server) handleParseFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	forceOCR := s.config.ForceOCR
	if v, ok := request.GetArguments()["force_ocr"].(bool); ok {
		forceOCR = v
	}

	result, err := s.engine.Extract(path, forceOCR)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("draw_parse_file failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return recordResult(result.Record)
}

func (s *Server) handleParseText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("text cannot be empty"), nil
	}

	return recordResult(s.engine.ParseText(raw))
}

func recordResult(rec *draw.Record) (*mcp.CallToolResult, error) {
	data, err := output.Marshal(rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode record: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run serves the tools over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	log.Debug().Str("name", s.config.ServerName).Str("root", s.config.PDFDirectory).Msg("Starting DRAW MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
