// liftlog-mcp serves the read-side MCP tools over stdio against a local
// store, for wiring the tracker into an MCP-capable assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/config"
	liftlogmcp "github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/store"
	"github.com/meltforce/liftlog/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-mcp", Version)
		return
	}

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := store.RunMigrations(cfg.Database.Driver, dsn); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var kv store.KV
	if cfg.Database.Driver == "postgres" {
		kv, err = store.OpenPostgres(ctx, dsn)
	} else {
		kv, err = store.OpenSQLite(cfg.Database.Path)
	}
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	st := store.New(kv)
	defer st.Close()

	svc := workout.NewService(st, workout.Options{
		RestSeconds:      cfg.Session.RestSeconds,
		AutoSaveInterval: time.Duration(cfg.Session.AutoSaveSeconds) * time.Second,
		StreakOncePerDay: cfg.Streak.OncePerDay,
	}, log)

	s := liftlogmcp.New(svc, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
