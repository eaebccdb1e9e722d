// Command brinkd serves the crisis-negotiation game API.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/kuitang/brink-sub001/internal/api"
	"github.com/kuitang/brink-sub001/internal/params"
	"github.com/kuitang/brink-sub001/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbPath := os.Getenv("BRINK_DB_PATH")
	if dbPath == "" {
		dbPath = "data/brink.db"
	}
	port := 8080
	if v := os.Getenv("BRINK_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BRINK_PORT", "value", v, "error", err)
			os.Exit(1)
		}
		port = p
	}
	adminKey := os.Getenv("BRINK_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("BRINK_ADMIN_KEY not set — scenario upload and batch endpoints disabled")
	}

	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	server := &api.Server{
		Store:    db,
		Params:   params.Defaults(),
		Port:     port,
		AdminKey: adminKey,
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}
