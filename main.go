package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-server/internal"
	"github.com/rocketscienceinc/tictactoe-server/internal/config"
)

const configFile = "config.yml"

// main starts the game server. Any startup failure panics and is turned
// into a message on stderr and exit code 1.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "tictactoe-server: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := loadConfig()
	logger := newLogger(conf.LogLevel)

	// usage: tictactoe-server [port]
	if err := conf.OverridePort(os.Args[1:]); err != nil {
		logger.Warn("ignoring port argument, using configured port", "error", err, "port", conf.Port)
	}

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("server stopped with error: %w", err))
	}
}

// loadConfig reads config.yml from the working directory, falling back to env and defaults.
func loadConfig() *config.Config {
	workDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to resolve working directory: %w", err))
	}

	return config.MustLoad(filepath.Join(workDir, configFile))
}

// newLogger writes JSON to stdout. Unknown level names log at info.
func newLogger(levelName string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
