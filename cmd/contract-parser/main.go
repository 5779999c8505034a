package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/pflag"

	"github.com/DexterHimZ/contract-intelligence-parser/internal/acquire"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/config"
	"github.com/DexterHimZ/contract-intelligence-parser/internal/parser"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. The JSON result goes to stdout,
// so all logging stays on stderr.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	cfg.Version = version

	logger := setupLogging(cfg)

	args := pflag.Args()
	if len(args) != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	path := args[0]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, path); err != nil {
		logger.Error("processing failed", "path", path, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) error {
	if err := acquire.ValidatePDF(path, cfg.MaxSizeMB); err != nil {
		return err
	}

	hash, err := acquire.FileSHA256(path)
	if err != nil {
		return err
	}
	logger.Info("processing document",
		"path", path, "sha256", hash, "version", version, "build_time", buildTime)

	p := parser.New(cfg, logger, parser.WithProgress(func(percent int, label string) {
		logger.Info("progress", "percent", percent, "label", label)
	}))

	result, err := p.Process(ctx, path)
	if err != nil {
		return err
	}

	var out []byte
	if cfg.PrettyJSON {
		out, err = sonic.ConfigDefault.MarshalIndent(result, "", "  ")
	} else {
		out, err = sonic.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
