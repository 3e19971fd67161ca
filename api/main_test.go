package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-board/backend/internal/board"
	"github.com/DeafMist/news-board/backend/internal/config"
	"github.com/DeafMist/news-board/backend/internal/render"
	"github.com/DeafMist/news-board/backend/internal/site"
	"github.com/DeafMist/news-board/backend/internal/source"
)

type mapSource map[string]string

func (m mapSource) Load(_ context.Context, path string) source.Result {
	body, ok := m[path]
	if !ok {
		return source.Failed(path, errors.New("missing"))
	}
	return source.Decode([]byte(body))
}

type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

func newTestServer(t *testing.T, src source.Source) *server {
	t.Helper()
	cfg, err := board.NewConfig(board.Settings{
		Categories: board.DefaultCategories(),
		Days:       3,
		BasePath:   "noticias",
		Location:   time.UTC,
	})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := board.New(cfg, src, log, board.WithClock(func() time.Time {
		return time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	}))
	return &server{log: log, site: site.NewWithSource(p, render.DefaultHost, render.DefaultContainerID, log)}
}

func TestHandleIndexRendersBoard(t *testing.T) {
	srv := newTestServer(t, mapSource{
		"noticias/2025-09-06-cine.json": `[{"titulo":"Estreno","link":"https://cine/1"}]`,
	})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	require.Contains(t, body, "📅 Noticias del 6 de septiembre de 2025")
	require.Contains(t, body, `href="https://cine/1"`)
	require.Equal(t, 1, strings.Count(body, `class="news-day"`))
}

func TestHandleDays(t *testing.T) {
	srv := newTestServer(t, mapSource{
		"noticias/2025-09-07-anime.json":  `[{"titulo":"a"}]`,
		"noticias/2025-09-05-musica.json": `[{"titulo":"m","imagen":"https://img/m.jpg"}]`,
	})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/days", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var blocks []board.DayBlock
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&blocks))
	require.Len(t, blocks, 2)
	require.Equal(t, "2025-09-07", blocks[0].Date)
	require.Equal(t, "Anime", blocks[0].Cards[0].Tag)
	require.Equal(t, "#", blocks[0].Cards[0].Href)
	require.Equal(t, "2025-09-05", blocks[1].Date)
	require.Equal(t, "https://img/m.jpg", blocks[1].Cards[0].ImageURL)
}

func TestHandleDaysEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, mapSource{})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/days", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, mapSource{})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	srv.health = stubHealth{err: errors.New("cluster red")}
	rec = httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "cluster red")
}

func TestWriteTimeoutCoversSlowestRun(t *testing.T) {
	cfg := &config.Board{
		Categories:   board.DefaultCategories(),
		Days:         7,
		Concurrency:  1,
		FetchTimeout: 15 * time.Second,
	}
	require.Equal(t, 7*3*15*time.Second+30*time.Second, writeTimeout(cfg))

	cfg.Concurrency = 3
	require.Equal(t, 7*15*time.Second+30*time.Second, writeTimeout(cfg))

	cfg.Concurrency = 2
	require.Equal(t, 7*2*15*time.Second+30*time.Second, writeTimeout(cfg))

	cfg.Days = 1
	cfg.FetchTimeout = time.Second
	require.Equal(t, minWriteTimeout, writeTimeout(cfg))
}
