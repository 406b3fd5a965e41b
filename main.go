package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rocketscienceinc/tictactoe-agent/internal/cli"
)

// main - is the entry point of the application. It initializes the logger and runs the command line.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	logger, level := initLogger()

	if err := cli.NewRootCommand(logger, level).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initialize logger. The level is adjusted once the config is read; logs go to
// stderr so they do not interleave with the board.
func initLogger() (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), level
}
