package board_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DeafMist/news-board/backend/internal/board"
	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/models"
	"github.com/DeafMist/news-board/backend/internal/source"
	"github.com/stretchr/testify/require"
)

// stubSource serves canned documents keyed by path and records every request.
type stubSource struct {
	mu    sync.Mutex
	docs  map[string]string
	delay map[string]time.Duration
	calls []string
}

func (s *stubSource) Load(_ context.Context, path string) source.Result {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	body, ok := s.docs[path]
	d := s.delay[path]
	s.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if !ok {
		return source.Failed(path, errors.New("404 Not Found"))
	}
	return source.Decode([]byte(body))
}

var fixedNow = time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)

func newPipeline(t *testing.T, src source.Source, concurrency int) *board.Pipeline {
	t.Helper()
	cfg, err := board.NewConfig(board.Settings{
		Categories:  board.DefaultCategories(),
		Days:        7,
		BasePath:    "noticias",
		Location:    time.UTC,
		Concurrency: concurrency,
	})
	require.NoError(t, err)
	return board.New(cfg, src, nil, board.WithClock(func() time.Time { return fixedNow }))
}

func TestBuildDayAllEmpty(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-anime.json": `[]`,
		"noticias/2025-09-07-cine.json":  `{"oops": true}`,
	}}
	p := newPipeline(t, src, 1)

	_, ok := p.BuildDay(context.Background(), "2025-09-07")
	require.False(t, ok)
	require.Equal(t, []string{
		"noticias/2025-09-07-anime.json",
		"noticias/2025-09-07-cine.json",
		"noticias/2025-09-07-musica.json",
	}, src.calls)
}

func TestBuildDaySingleItem(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-cine.json": `[{"titulo":"Estreno","resumen":"Llega a cines","imagen":"https://img/e.jpg","link":"https://cine/e"}]`,
	}}
	p := newPipeline(t, src, 1)

	block, ok := p.BuildDay(context.Background(), "2025-09-07")
	require.True(t, ok)
	require.Equal(t, "2025-09-07", block.Date)

	label, err := datewindow.LongDateLabel("2025-09-07", datewindow.Spanish)
	require.NoError(t, err)
	require.Equal(t, "📅 Noticias del "+label, block.Heading)

	require.Len(t, block.Cards, 1)
	card := block.Cards[0]
	require.Equal(t, "Cine", card.Tag)
	require.Equal(t, "https://cine/e", card.Href)
	require.Equal(t, board.CardTarget, card.Target)
	require.Equal(t, "Estreno", card.Title)
	require.Equal(t, "Estreno", card.ImageAlt)
	require.Equal(t, "Llega a cines", card.Summary)
	require.True(t, card.HasImage())
}

func TestBuildDayOrdersByCategoryThenSource(t *testing.T) {
	docs := map[string]string{
		"noticias/2025-09-07-anime.json":  `[{"titulo":"a1"},{"titulo":"a2"}]`,
		"noticias/2025-09-07-musica.json": `[{"titulo":"m1"},{"titulo":"m2"},{"titulo":"m3"}]`,
	}
	want := []string{"a1", "a2", "m1", "m2", "m3"}
	wantTags := []string{"Anime", "Anime", "Música", "Música", "Música"}

	for _, concurrency := range []int{1, 3} {
		src := &stubSource{docs: docs, delay: map[string]time.Duration{
			"noticias/2025-09-07-anime.json": 30 * time.Millisecond,
		}}
		p := newPipeline(t, src, concurrency)

		block, ok := p.BuildDay(context.Background(), "2025-09-07")
		require.True(t, ok)

		titles := make([]string, 0, len(block.Cards))
		tags := make([]string, 0, len(block.Cards))
		for _, c := range block.Cards {
			titles = append(titles, c.Title)
			tags = append(tags, c.Tag)
		}
		require.Equal(t, want, titles, "concurrency %d", concurrency)
		require.Equal(t, wantTags, tags, "concurrency %d", concurrency)
	}
}

func TestBuildDayMissingLinkUsesPlaceholder(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-anime.json": `[{"resumen":"sin enlace"},{"titulo":false,"imagen":0,"link":false}]`,
	}}
	p := newPipeline(t, src, 1)

	block, ok := p.BuildDay(context.Background(), "2025-09-07")
	require.True(t, ok)
	require.Len(t, block.Cards, 2)
	for _, card := range block.Cards {
		require.Equal(t, "#", card.Href)
		require.Equal(t, "Sin título", card.Title)
		require.Equal(t, "Noticia", card.ImageAlt)
		require.False(t, card.HasImage())
	}
}

func TestBuildDayMalformedSameAsMissing(t *testing.T) {
	malformed := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-anime.json": `[{"titulo":`,
		"noticias/2025-09-07-cine.json":  `[{"titulo":"c1"}]`,
	}}
	missing := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-cine.json": `[{"titulo":"c1"}]`,
	}}

	a, okA := newPipeline(t, malformed, 1).BuildDay(context.Background(), "2025-09-07")
	b, okB := newPipeline(t, missing, 1).BuildDay(context.Background(), "2025-09-07")
	require.True(t, okA)
	require.True(t, okB)
	require.Equal(t, b, a)
}

func TestRunOrdersDaysAndSkipsEmpty(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"noticias/2025-09-07-anime.json":  `[{"titulo":"hoy"}]`,
		"noticias/2025-09-05-cine.json":   `[{"titulo":"antier"}]`,
		"noticias/2025-09-01-musica.json": `[{"titulo":"hace seis"}]`,
		"noticias/2025-08-31-anime.json":  `[{"titulo":"fuera de ventana"}]`,
	}}
	p := newPipeline(t, src, 1)

	blocks := p.Run(context.Background())
	require.Len(t, blocks, 3)
	require.Equal(t, "2025-09-07", blocks[0].Date)
	require.Equal(t, "2025-09-05", blocks[1].Date)
	require.Equal(t, "2025-09-01", blocks[2].Date)
	for _, b := range blocks {
		require.NotEmpty(t, b.Cards)
	}
	require.Len(t, src.calls, 7*3)
}

func TestRunCrossesMonthBoundary(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"noticias/2024-02-29-anime.json": `[{"titulo":"bisiesto"}]`,
	}}
	cfg, err := board.NewConfig(board.Settings{
		Categories: []models.Category{{ID: "anime", Label: "Anime"}},
		Days:       3,
		BasePath:   "noticias",
		Location:   time.UTC,
	})
	require.NoError(t, err)
	p := board.New(cfg, src, nil, board.WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	}))

	blocks := p.Run(context.Background())
	require.Len(t, blocks, 1)
	require.Equal(t, "📅 Noticias del 29 de febrero de 2024", blocks[0].Heading)
	require.Equal(t, []string{
		"noticias/2024-03-01-anime.json",
		"noticias/2024-02-29-anime.json",
		"noticias/2024-02-28-anime.json",
	}, src.calls)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	src := &stubSource{docs: map[string]string{}}
	p := newPipeline(t, src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Empty(t, p.Run(ctx))
	require.Empty(t, src.calls)
}

func TestTag(t *testing.T) {
	got := board.Tag(models.RawItem{Title: "t", Image: "i"}, "Cine")
	require.Equal(t, models.TaggedItem{Title: "t", Image: "i", Link: "#", Tag: "Cine"}, got)
}

func TestNewDayBlockRejectsMalformedDate(t *testing.T) {
	_, err := board.NewDayBlock("2025-13-01", []models.TaggedItem{{Title: "x"}}, datewindow.Spanish)
	require.True(t, errors.Is(err, datewindow.ErrInvalidDate))
}

func TestNewConfig(t *testing.T) {
	cfg, err := board.NewConfig(board.Settings{Categories: board.DefaultCategories()})
	require.NoError(t, err)
	require.Equal(t, board.DefaultDays, cfg.Days())
	require.Equal(t, "es", cfg.Locale().Code)
	require.Equal(t, 1, cfg.Concurrency())

	cats := cfg.Categories()
	cats[0].Label = "changed"
	require.Equal(t, "Anime", cfg.Categories()[0].Label)

	_, err = board.NewConfig(board.Settings{})
	require.True(t, errors.Is(err, board.ErrInvalidConfig))

	_, err = board.NewConfig(board.Settings{Categories: []models.Category{{ID: "a"}, {ID: "a"}}})
	require.True(t, errors.Is(err, board.ErrInvalidConfig))

	_, err = board.NewConfig(board.Settings{Categories: []models.Category{{ID: "../etc"}}})
	require.True(t, errors.Is(err, board.ErrInvalidConfig))

	_, err = board.NewConfig(board.Settings{Categories: board.DefaultCategories(), Days: -1})
	require.True(t, errors.Is(err, board.ErrInvalidConfig))
}
