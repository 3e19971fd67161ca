package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/news-board/backend/internal/board"
	"github.com/DeafMist/news-board/backend/internal/config"
	"github.com/DeafMist/news-board/backend/internal/elasticsearch"
	"github.com/DeafMist/news-board/backend/internal/render"
	"github.com/DeafMist/news-board/backend/internal/source"
)

// Site ties a board pipeline to the host page it is rendered into.
type Site struct {
	pipeline    *board.Pipeline
	host        []byte
	containerID string
	es          *elasticsearch.Client
	log         *slog.Logger
}

// Page is the outcome of one board run.
type Page struct {
	RunID    string
	HTML     []byte
	Blocks   []board.DayBlock
	Rendered bool
}

// New builds the source backend described by cfg and the pipeline on top of it.
func New(cfg *config.Board, log *slog.Logger) (*Site, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	host := render.DefaultHost
	if cfg.HostPage != "" {
		host, err = os.ReadFile(cfg.HostPage)
		if err != nil {
			return nil, fmt.Errorf("read host page: %w", err)
		}
	}

	s := &Site{host: host, containerID: cfg.ContainerID, log: log}

	var src source.Source
	switch cfg.Source {
	case config.SourceHTTP:
		src = source.NewHTTP(cfg.BaseURL, cfg.FetchTimeout, log)
	case config.SourceElasticsearch:
		s.es, err = elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			return nil, err
		}
		src = s.es
	default:
		src = source.NewDir(os.DirFS(cfg.SiteDir), log)
	}

	s.pipeline = board.New(settings, src, log)
	return s, nil
}

// NewWithSource is New for callers that already have a source, such as tests.
func NewWithSource(pipeline *board.Pipeline, host []byte, containerID string, log *slog.Logger) *Site {
	return &Site{pipeline: pipeline, host: host, containerID: containerID, log: log}
}

// Elasticsearch returns the client when the board reads from Elasticsearch.
func (s *Site) Elasticsearch() *elasticsearch.Client { return s.es }

// Blocks runs the pipeline without rendering.
func (s *Site) Blocks(ctx context.Context) []board.DayBlock {
	return s.pipeline.Run(ctx)
}

// Build runs the pipeline and injects the result into the host page.
func (s *Site) Build(ctx context.Context) (*Page, error) {
	runID := uuid.NewString()
	start := time.Now()

	blocks := s.pipeline.Run(ctx)
	html, ok, err := render.Inject(s.host, s.containerID, blocks)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if !ok {
		s.log.Debug("host page has no board container", slog.String("run_id", runID), slog.String("container", s.containerID))
	}

	s.log.Info("board built",
		slog.String("run_id", runID),
		slog.Int("days", len(blocks)),
		slog.Bool("rendered", ok),
		slog.Duration("took", time.Since(start)),
	)

	return &Page{RunID: runID, HTML: html, Blocks: blocks, Rendered: ok}, nil
}
