// Command clipd is the clipboard history daemon.
//
// It watches the system clipboard, deduplicates and stores everything
// copied, enriches copied URLs with the page's title and content, and
// serves the history over MCP on stdio (plus an optional HTTP surface).
//
// Usage:
//
//	clipd                                  # run with defaults (~/.clipd/history.db)
//	clipd -config clipd.yaml               # run with config file
//	clipd -db history.db -http :8090       # also serve HTTP
//	clipd -db history.db -search "query"   # search and exit
//	clipd -db history.db -stats            # show stats and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/clipd/clipboard"
	"github.com/hazyhaar/clipd/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var mcpImpl = &mcp.Implementation{Name: "clipd", Version: "1.0.0"}

func main() {
	configPath := flag.String("config", "", "path to clipd.yaml config file")
	dbPath := flag.String("db", "", "path to SQLite database")
	httpAddr := flag.String("http", "", "optional HTTP listen address, e.g. :8090")
	searchQuery := flag.String("search", "", "search query (exit after results)")
	showStats := flag.Bool("stats", false, "show stats and exit")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	limit := flag.Int("limit", 20, "max search results")
	flag.Parse()

	// stdout carries the MCP stdio transport; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: resolveLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dbPath, *httpAddr, *searchQuery, *showStats, *limit); err != nil {
		logger.Error("clipd: fatal", "error", err)
		os.Exit(1)
	}
}

func resolveLevel(flagLevel string) slog.Level {
	s := flagLevel
	if s == "" {
		s = os.Getenv("CLIPD_LOG_LEVEL")
	}
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, httpAddr, searchQuery string, showStats bool, limit int) error {
	cfg, err := resolveConfig(configPath, dbPath)
	if err != nil {
		return err
	}

	// One-shot queries never touch the clipboard; skip platform init so
	// they work over SSH and in headless sessions.
	var adapter clipboard.Adapter
	if searchQuery != "" || showStats {
		adapter = clipboard.NewMemory()
	} else {
		sys, err := clipboard.NewSystem()
		if err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		adapter = sys
	}

	eng, err := engine.New(cfg, adapter, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer eng.Close()

	// One-shot: search.
	if searchQuery != "" {
		entries, err := eng.Search(ctx, searchQuery, limit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		return writeIndented(entries)
	}

	// One-shot: stats.
	if showStats {
		stats, err := eng.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return writeIndented(stats)
	}

	// Daemon mode: monitor + workers, MCP on stdio, optional HTTP.
	eng.Start(ctx)
	logger.Info("clipd: running", "db", cfg.DBPath, "poll", cfg.PollInterval)

	if httpAddr != "" {
		httpSrv := &http.Server{Addr: httpAddr, Handler: eng.Router()}
		go func() {
			logger.Info("clipd: http listening", "addr", httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("clipd: http", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpSrv.Shutdown(context.Background())
		}()
	}

	srv := mcp.NewServer(mcpImpl, nil)
	eng.RegisterMCP(srv)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}

	logger.Info("clipd: shutting down")
	return nil
}

func resolveConfig(configPath, dbPath string) (*engine.Config, error) {
	cfg := &engine.Config{}
	if configPath != "" {
		loaded, err := engine.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func writeIndented(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
