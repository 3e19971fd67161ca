package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/news-board/backend/internal/board"
	"github.com/DeafMist/news-board/backend/internal/config"
	"github.com/DeafMist/news-board/backend/internal/logger"
	"github.com/DeafMist/news-board/backend/internal/site"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type boardSite interface {
	Build(ctx context.Context) (*site.Page, error)
	Blocks(ctx context.Context) []board.DayBlock
}

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	s, err := site.New(&cfg.Board, log)
	if err != nil {
		log.Error("init board", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{log: log, site: s}
	if es := s.Elasticsearch(); es != nil {
		srv.health = es
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(&cfg.Board),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("source", cfg.Source),
			slog.Int("days", cfg.Days),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

const minWriteTimeout = 2 * time.Minute

// writeTimeout covers a board run in which every load hangs until
// FetchTimeout, plus time to render and send the page.
func writeTimeout(cfg *config.Board) time.Duration {
	workers := max(cfg.Concurrency, 1)
	rounds := (len(cfg.Categories) + workers - 1) / workers
	worst := time.Duration(cfg.Days*rounds)*cfg.FetchTimeout + 30*time.Second
	return max(worst, minWriteTimeout)
}

type server struct {
	log    *slog.Logger
	site   boardSite
	health healthChecker
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/days", s.handleDays)
	r.Get("/health", s.handleHealth)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.site.Build(r.Context())
	if err != nil {
		s.log.Error("build board", slog.Any("err", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.HTML)
}

func (s *server) handleDays(w http.ResponseWriter, r *http.Request) {
	blocks := s.site.Blocks(r.Context())
	if blocks == nil {
		blocks = []board.DayBlock{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, blocks)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
