package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/models"
)

// ErrInvalidConfig is returned by NewConfig for unusable settings.
var ErrInvalidConfig = errors.New("invalid board config")

// DefaultDays is the number of days shown when none is configured.
const DefaultDays = 7

// DefaultCategories mirrors the categories the board was launched with.
func DefaultCategories() []models.Category {
	return []models.Category{
		{ID: "anime", Label: "Anime"},
		{ID: "cine", Label: "Cine"},
		{ID: "musica", Label: "Música"},
	}
}

// Config is the immutable description of one board. Build it with NewConfig.
type Config struct {
	categories  []models.Category
	days        int
	basePath    string
	locale      datewindow.Locale
	location    *time.Location
	concurrency int
}

// Settings are the inputs to NewConfig.
type Settings struct {
	Categories  []models.Category
	Days        int
	BasePath    string
	Locale      datewindow.Locale
	Location    *time.Location
	Concurrency int
}

// NewConfig validates s and freezes it into a Config.
func NewConfig(s Settings) (Config, error) {
	if len(s.Categories) == 0 {
		return Config{}, fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(s.Categories))
	cats := make([]models.Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return Config{}, fmt.Errorf("%w: category with empty id", ErrInvalidConfig)
		}
		if strings.ContainsAny(id, "/\\") {
			return Config{}, fmt.Errorf("%w: category id %q contains a path separator", ErrInvalidConfig, id)
		}
		if _, dup := seen[id]; dup {
			return Config{}, fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, id)
		}
		seen[id] = struct{}{}
		label := strings.TrimSpace(c.Label)
		if label == "" {
			label = id
		}
		cats = append(cats, models.Category{ID: id, Label: label})
	}

	if s.Days == 0 {
		s.Days = DefaultDays
	}
	if s.Days < 0 {
		return Config{}, fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	}
	if s.Locale.Code == "" {
		s.Locale = datewindow.Spanish
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}

	return Config{
		categories:  cats,
		days:        s.Days,
		basePath:    s.BasePath,
		locale:      s.Locale,
		location:    s.Location,
		concurrency: s.Concurrency,
	}, nil
}

// Categories returns a copy of the categories in declaration order.
func (c Config) Categories() []models.Category {
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Days is the length of the window, today included.
func (c Config) Days() int { return c.days }

// BasePath is the directory or URL prefix source paths are built under.
func (c Config) BasePath() string { return c.basePath }

// Locale renders headings and card fallbacks.
func (c Config) Locale() datewindow.Locale { return c.locale }

// Location decides which calendar day "today" is.
func (c Config) Location() *time.Location { return c.location }

// Concurrency is the number of categories of one date loaded at once.
func (c Config) Concurrency() int { return c.concurrency }
