package board

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/models"
	"github.com/DeafMist/news-board/backend/internal/source"
)

// PlaceholderLink is the destination of cards whose item has no link.
const PlaceholderLink = "#"

// Pipeline aggregates source documents into day blocks.
type Pipeline struct {
	cfg Config
	src source.Source
	log *slog.Logger
	now func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a pipeline reading from src.
func New(cfg Config, src source.Source, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Pipeline{cfg: cfg, src: src, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// Run builds the blocks for every date in the window, today first.
// Dates without items are skipped.
func (p *Pipeline) Run(ctx context.Context) []DayBlock {
	now := p.now().In(p.cfg.location)
	blocks := make([]DayBlock, 0, p.cfg.days)
	for _, date := range datewindow.Window(now, p.cfg.days) {
		if ctx.Err() != nil {
			break
		}
		block, ok := p.BuildDay(ctx, date)
		if !ok {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// BuildDay loads every category for date and returns its block.
// The second result is false when no category contributed an item.
func (p *Pipeline) BuildDay(ctx context.Context, date string) (DayBlock, bool) {
	bucket := p.Bucket(ctx, date)
	if len(bucket) == 0 {
		p.log.Debug("no news for day", slog.String("date", date))
		return DayBlock{}, false
	}

	block, err := NewDayBlock(date, bucket, p.cfg.locale)
	if err != nil {
		p.log.Warn("skip day", slog.String("date", date), slog.Any("err", err))
		return DayBlock{}, false
	}
	return block, true
}

// Bucket returns the tagged items for date in category declaration order.
func (p *Pipeline) Bucket(ctx context.Context, date string) []models.TaggedItem {
	cats := p.cfg.categories
	parts := make([][]models.TaggedItem, len(cats))

	load := func(i int) {
		cat := cats[i]
		res := p.src.Load(ctx, source.Path(p.cfg.basePath, date, cat.ID))
		if res.Empty() {
			return
		}
		tagged := make([]models.TaggedItem, 0, len(res.Items))
		for _, item := range res.Items {
			tagged = append(tagged, Tag(item, cat.Label))
		}
		parts[i] = tagged
	}

	if p.cfg.concurrency <= 1 || len(cats) == 1 {
		for i := range cats {
			load(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.cfg.concurrency)
		for i := range cats {
			g.Go(func() error {
				load(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	var bucket []models.TaggedItem
	for _, part := range parts {
		bucket = append(bucket, part...)
	}
	return bucket
}

// Tag applies field defaults to item and attaches the category label.
func Tag(item models.RawItem, label string) models.TaggedItem {
	link := string(item.Link)
	if link == "" {
		link = PlaceholderLink
	}
	return models.TaggedItem{
		Title:   string(item.Title),
		Summary: string(item.Summary),
		Image:   string(item.Image),
		Link:    link,
		Tag:     label,
	}
}
