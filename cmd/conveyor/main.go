// ABOUTME: CLI entrypoint for the conveyor pipeline runner, with run,
// ABOUTME: validate, serve, and tui modes — the thin glue spec.md §6 calls
// ABOUTME: out of scope, grounded on cmd/mammoth/main.go's flag/dispatch shape.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/jobs"
	"github.com/2389-research/conveyor/logging"
	"github.com/2389-research/conveyor/manager"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/store"
)

var version = "dev"

// cliConfig holds all flags and the positional config document path.
type cliConfig struct {
	validateOnly bool
	serveMode    bool
	tuiMode      bool
	addr         string
	format       string
	auditDB      string
	showVersion  bool
	configPath   string
}

func main() {
	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("conveyor %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

func parseFlags() cliConfig {
	var cfg cliConfig

	fs := flag.NewFlagSet("conveyor", flag.ContinueOnError)
	fs.BoolVar(&cfg.validateOnly, "validate", false, "Validate the configuration document without executing")
	fs.BoolVar(&cfg.serveMode, "server", false, "Start the HTTP status server alongside the run")
	fs.BoolVar(&cfg.tuiMode, "tui", false, "Run with the interactive terminal dashboard instead of -server")
	fs.StringVar(&cfg.addr, "addr", "127.0.0.1:2389", "Status server listen address (with -server)")
	fs.StringVar(&cfg.format, "format", "", "Document format: json or yaml (default: inferred from file extension, falling back to json)")
	fs.StringVar(&cfg.auditDB, "audit-db", "", "Path to a SQLite audit database (optional; audit trail is disabled if empty)")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if fs.NArg() > 0 {
		cfg.configPath = fs.Arg(0)
	}
	return cfg
}

// run loads and validates the configuration document, then dispatches to
// the requested mode. Returns a process exit code.
func run(cfg cliConfig) int {
	if cfg.configPath == "" {
		printHelp(os.Stderr, version)
		return 0
	}
	if cfg.serveMode && cfg.tuiMode {
		fmt.Fprintln(os.Stderr, "error: -server and -tui are mutually exclusive")
		return 2
	}

	f, err := os.Open(cfg.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	initial, err := config.LoadDocument(f, resolveFormat(cfg.format, cfg.configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	reg := registry.New()
	jobs.Register(reg)

	if err := config.ValidateHandlers(initial.Config.Root, reg); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		return 1
	}
	if cfg.validateOnly {
		fmt.Println("Configuration is valid.")
		return 0
	}

	logger, err := logging.New(initial.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer logger.Close()

	var audit *store.Store
	if cfg.auditDB != "" {
		audit, err = store.Open(cfg.auditDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer audit.Close()
	}

	pool, err := manager.Run(initial, reg, logger, audit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\ninterrupted, waiting for current stages to finish...")
		cancel()
	}()

	switch {
	case cfg.serveMode:
		return runWithStatusServer(ctx, cfg.addr, pool, audit)
	case cfg.tuiMode:
		return runWithDashboard(pool)
	default:
		pool.Wait()
		return 0
	}
}

func resolveFormat(explicit, path string) string {
	if explicit != "" {
		return explicit
	}
	if len(path) >= 5 && path[len(path)-5:] == ".yaml" {
		return "yaml"
	}
	if len(path) >= 4 && path[len(path)-4:] == ".yml" {
		return "yaml"
	}
	return "json"
}
