package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/pharmadb/obimport/internal/config"
	"github.com/pharmadb/obimport/internal/database"
	"github.com/pharmadb/obimport/internal/importer"
	"github.com/pharmadb/obimport/internal/logging"
)

func main() {
	patentFile := flag.String("patents", "", "path to a tilde-delimited patent listing extract")
	useCodes := flag.Bool("usecodes", false, "import the bundled use-code definitions")
	flag.Parse()

	if *patentFile == "" && !*useCodes {
		fmt.Fprintln(os.Stderr, "usage: importer [-patents FILE] [-usecodes]")
		os.Exit(2)
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to create connection pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	imp := importer.New(database.NewStore(pool))
	failed := false

	if *useCodes {
		res := importer.NewResult()
		runCtx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)
		err := imp.ImportUseCodes(runCtx, res)
		cancel()
		if !report("usecodes", res, err) {
			failed = true
		}
	}

	if *patentFile != "" {
		data, err := os.ReadFile(*patentFile)
		if err != nil {
			slog.Error("failed to read patent file", "path", *patentFile, "error", err)
			os.Exit(1)
		}
		if int64(len(data)) > cfg.Import.MaxFileSize {
			slog.Error("patent file exceeds size limit",
				"path", *patentFile, "size", len(data), "limit", cfg.Import.MaxFileSize)
			os.Exit(1)
		}

		res := importer.NewResult()
		runCtx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)
		err = imp.ImportPatents(runCtx, string(data), res)
		cancel()
		if !report("patents", res, err) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// report logs the outcome of one run and returns whether it committed.
// Row-level errors are listed but do not fail the run.
func report(feed string, res *importer.Result, err error) bool {
	log := slog.Default().With("feed", feed, "run_id", res.RunID.String())

	for _, msg := range res.Errors {
		log.Warn("row error", "detail", msg)
	}

	if err != nil {
		log.Error("import failed, nothing was committed", "error", err)
		return false
	}

	log.Info("import complete",
		"created", res.Created,
		"updated", res.Updated,
		"linked", res.Linked,
		"unlinked", res.Unlinked,
		"malformed", res.Malformed,
		"row_errors", len(res.Errors),
	)
	return true
}
