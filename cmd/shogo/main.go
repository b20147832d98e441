// Package main is the Shogo CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/shogo/internal/bibio"
	"github.com/hyperjump/shogo/internal/cli"
	"github.com/hyperjump/shogo/internal/config"
	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/match"
	"github.com/hyperjump/shogo/internal/server"
	"github.com/hyperjump/shogo/internal/storage"
	"github.com/hyperjump/shogo/internal/watcher"
	"github.com/hyperjump/shogo/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shogo/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "shogo server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "match":
		runMatch()
	case "index":
		runIndex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("shogo version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (candidate selection, bibliography reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.CachePath)
	if err != nil {
		logger.Fatal("Failed to open cache store", zap.Error(err))
	}
	defer store.Close()

	idx, matcher, err := loadEngine(context.Background(), cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	srv := server.NewServer(idx, matcher, store, cfg, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Bibliography.Watch {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(cfg.Bibliography.Path, func(path string) {
			records, err := bibio.ReadFile(path)
			if err != nil {
				logger.Warn("bibliography reload read failed", zap.String("path", path), zap.Error(err))
				return
			}
			newIdx, err := index.LoadOrBuild(context.Background(), records, store, logger)
			if err != nil {
				logger.Warn("bibliography reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			srv.Swap(newIdx)
			if err := store.Prune(context.Background(), cfg.Storage.CacheKeep); err != nil {
				logger.Warn("cache prune failed", zap.Error(err))
			}
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printMatchUsage prints match subcommand usage.
func printMatchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: shogo match [flags] <queries-file>\n\n")
	fmt.Fprintf(fs.Output(), "Matches every entry in the queries file (csv, xlsx, or ods) against the\nconfigured bibliography and reports the best candidates per entry.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  shogo match staged.csv
  shogo match --out matched.csv staged.xlsx
  shogo match --output json staged.ods        # structured JSON for other apps
  shogo match --top 3 --min-score 60 staged.csv
`)
}

func runMatch() {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outPath := fs.String("out", "", "write full results as CSV to this path")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one query per line), or json (parseable)")
	topN := fs.Int("top", 0, "matches per query (0 = use config)")
	minScore := fs.Float64("min-score", -1, "minimum composite score (negative = use config)")
	noCache := fs.Bool("no-cache", false, "skip the index cache and build in memory")
	fs.Usage = func() { printMatchUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		printMatchUsage(fs)
		os.Exit(1)
	}
	queriesPath := fs.Arg(0)

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "compact":
		format = cli.OutputCompact
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text, compact, or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *topN > 0 {
		cfg.Matcher.TopN = *topN
	}
	if *minScore >= 0 {
		cfg.Matcher.MinScore = *minScore
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	queries, err := bibio.ReadFile(queriesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read queries: %v\n", err)
		os.Exit(1)
	}

	var store storage.Store
	if !*noCache {
		s, err := storage.NewSQLiteStore(cfg.Storage.CachePath)
		if err != nil {
			logger.Warn("cache store unavailable, building in memory", zap.Error(err))
		} else {
			store = s
			defer s.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, matcher, err := loadEngine(ctx, cfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	results, err := matcher.MatchBatch(ctx, queries, idx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
		os.Exit(1)
	}
	if len(results) < len(queries) {
		fmt.Fprintf(os.Stderr, "Interrupted: %d of %d queries matched\n", len(results), len(queries))
	}

	entry := func(id int) string { return bibio.Citation(idx.Record(id)) }
	if err := cli.WriteMatchResults(os.Stdout, queries, results, entry, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := bibio.WriteMatches(*outPath, queries, results, idx, cfg.Matcher.TopN); err != nil {
			fmt.Fprintf(os.Stderr, "Write CSV failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *outPath)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	records, err := bibio.ReadFile(cfg.Bibliography.Path)
	if err != nil {
		fmt.Printf("Failed to read bibliography: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.CachePath)
	if err != nil {
		fmt.Printf("Failed to open cache store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	start := time.Now()
	idx, err := index.LoadOrBuild(ctx, records, store, logger)
	if err != nil {
		fmt.Printf("Index build failed: %v\n", err)
		os.Exit(1)
	}
	if err := store.Prune(ctx, cfg.Storage.CacheKeep); err != nil {
		logger.Warn("cache prune failed", zap.Error(err))
	}
	fmt.Printf("Indexed %d records in %v\n", idx.Len(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Fingerprint: %s\n", index.Fingerprint(records))
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Records int                    `json:"records"`
	Backend string                 `json:"backend"`
	Config  map[string]interface{} `json:"config,omitempty"`
	Cache   []struct {
		Fingerprint string    `json:"fingerprint"`
		RecordCount int       `json:"record_count"`
		SizeBytes   int64     `json:"size_bytes"`
		CreatedAt   time.Time `json:"created_at"`
	} `json:"cache,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("records:   %d   # bibliography entries in the index\n", status.Records)
		fmt.Printf("backend:   %s   # scoring backend\n", status.Backend)
		if len(status.Cache) > 0 {
			fmt.Println()
			fmt.Println("# cached indexes (newest first)")
			for _, e := range status.Cache {
				fmt.Printf("%s  records=%d  bytes=%d  %s\n",
					e.Fingerprint[:12], e.RecordCount, e.SizeBytes, e.CreatedAt.Format(time.RFC3339))
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// loadEngine reads the configured bibliography, builds or loads the index,
// and constructs the batch matcher.
func loadEngine(ctx context.Context, cfg *config.Config, store storage.Store, logger *zap.Logger) (*index.Index, *match.BatchMatcher, error) {
	records, err := bibio.ReadFile(cfg.Bibliography.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read bibliography: %w", err)
	}
	var blobs index.BlobStore
	if store != nil {
		blobs = store
	}
	idx, err := index.LoadOrBuild(ctx, records, blobs, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build index: %w", err)
	}
	matcher, err := match.NewBatchMatcher(&cfg.Matcher, logger)
	if err != nil {
		return nil, nil, err
	}
	return idx, matcher, nil
}

func printUsage() {
	fmt.Println(`shogo - Bibliographic fuzzy matcher

Usage:
  shogo server [flags]            Start the HTTP server
  shogo match [flags] <file>      Match staged entries against the bibliography
  shogo index [flags]             Build and cache the bibliography index
  shogo status [flags]            Show index/cache status from a running server
  shogo version                   Show version
  shogo help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/shogo/config.yaml)
  --debug            Enable debug logging (candidate selection, reloads, etc.)

Match Flags:
  --config string    Config file path
  --out string       Write full results as CSV to this path
  --output string    Output format: text, compact, or json (default: text)
  --top int          Matches per query (default from config)
  --min-score float  Minimum composite score (default from config)
  --no-cache         Skip the index cache and build in memory

Index Flags:
  --config string    Config file path

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  shogo server
  shogo match staged.csv
  shogo match --out matched.csv --top 3 staged.xlsx
  shogo match --output json staged.ods
  shogo index
  shogo status --output json`)
}
