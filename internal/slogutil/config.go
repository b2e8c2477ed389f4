package slogutil

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/conduitllm/admin/internal/config"
)

// Options tunes Setup. The zero value logs text to stdout.
type Options struct {
	// Stdout replaces os.Stdout as the console writer.
	Stdout io.Writer
	// JSON selects the JSON handler instead of the text handler.
	JSON  bool
	Hooks []Hook
}

// Setup builds the process logger from the log configuration. The returned
// leveler controls the level at runtime. When logConfig.File is set, records
// are written to the console and to a rotated file.
func Setup(logConfig config.LogConfig, opts Options) (*slog.Logger, *DynamicLeveler) {
	var console io.Writer = os.Stdout
	if opts.Stdout != nil {
		console = opts.Stdout
	}

	writer := console
	if logConfig.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   logConfig.File,
			MaxSize:    logConfig.MaxSize,    // MB
			MaxBackups: logConfig.MaxBackups, // number of old files
			MaxAge:     logConfig.MaxAge,     // days
			Compress:   logConfig.Compress,
		}
		writer = io.MultiWriter(console, fileWriter)
	}

	level, err := config.ParseLogLevel(logConfig.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	leveler := NewDynamicLeveler(level)

	handlerOpts := &slog.HandlerOptions{Level: leveler}
	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		base = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(WrapHandler(base).WithHooks(opts.Hooks...)), leveler
}
