package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"siege-ca/internal/application"
	"siege-ca/internal/config"
)

// main - loads config, builds the logger and runs the headless session server.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "", "path to config.yml (env only when empty)")
	flag.Parse()

	conf := initConfig(*configPath)
	logger := initLogger(conf)

	if err := application.RunApp(logger, conf); err != nil {
		logger.Error("app run failed", "error", err)
		os.Exit(1)
	}
}

// initialize config.
func initConfig(path string) *config.Config {
	if path == "" {
		if _, err := os.Stat("config.yml"); err == nil {
			path = "config.yml"
		}
	}
	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
