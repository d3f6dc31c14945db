// Package mcp exposes the scanner and insertion planner to editors and
// agents over the Model Context Protocol.
package mcp

// Implementation Plan:
// 1. Server struct wrapping the scan engine and an mcp-go stdio server
// 2. NewServer - registers debug_scan and insertion_point tools
// 3. Serve - runs on stdio until a shutdown signal or server error
// 4. Engine lifetime belongs to the caller; Serve never closes it

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"

	"debugsweep/internal/insertion"
	"debugsweep/internal/scanner"
)

// Server manages the MCP server lifecycle.
type Server struct {
	engine *scanner.Engine
	logger hclog.Logger
	mcp    *server.MCPServer
}

// NewServer builds a stdio MCP server with both tools registered. The
// version string goes into the protocol handshake.
func NewServer(engine *scanner.Engine, insertOpts insertion.Options, version string, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	mcpServer := server.NewMCPServer(
		"debugsweep-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	AddDebugScanTool(mcpServer, engine)
	AddInsertionPointTool(mcpServer, engine.Discovery().Root(), insertOpts)

	return &Server{
		engine: engine,
		logger: logger.Named("mcp"),
		mcp:    mcpServer,
	}
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving on stdio", "workspace", s.engine.Discovery().Root())
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
