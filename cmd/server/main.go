// Package main is the entry point for the movie collection server.
//
// main's job is small: read configuration, build the logger, hand both to
// internal/server, and exit non-zero on failure. Everything else lives in
// the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/movieweb/internal/server"
)

func main() {
	// Load a local .env if present — that's where OMDB_API_KEY usually
	// lives in development. Missing file is fine; real env vars win.
	_ = godotenv.Load()

	logLevel := slog.LevelDebug
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			logLevel = slog.LevelDebug
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides for deployments, e.g. /var/lib/movieweb/movies.db.
	dbPath := "data/movies.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Without an API key the server still runs; only /api/metadata lookups
	// are unavailable.
	omdbKey := os.Getenv("OMDB_API_KEY")
	if omdbKey == "" {
		logger.Warn("OMDB_API_KEY not set — metadata lookups are disabled")
	}

	srv, err := server.New(server.Config{
		Port:       port,
		DBPath:     dbPath,
		OMDbAPIKey: omdbKey,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
