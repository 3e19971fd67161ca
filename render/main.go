package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/DeafMist/news-board/backend/internal/config"
	"github.com/DeafMist/news-board/backend/internal/logger"
	"github.com/DeafMist/news-board/backend/internal/site"
)

type pageBuilder interface {
	Build(ctx context.Context) (*site.Page, error)
}

func main() {
	log := logger.New("render")
	cfg, err := config.LoadRender()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	s, err := site.New(&cfg.Board, log)
	if err != nil {
		log.Error("init board", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := writePage(ctx, s, cfg.Output); err != nil {
		log.Error("render board", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("board written", slog.String("output", cfg.Output))
}

// writePage builds the page and replaces output atomically.
func writePage(ctx context.Context, b pageBuilder, output string) error {
	page, err := b.Build(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".board-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(page.HTML); err != nil {
		tmp.Close()
		return fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod page: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
