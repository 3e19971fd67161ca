package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/news-board/backend/internal/board"
	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/models"
	"github.com/DeafMist/news-board/backend/internal/processing"
)

// Source backends for the board.
const (
	SourceHTTP          = "http"
	SourceDir           = "dir"
	SourceElasticsearch = "elasticsearch"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Board describes how the news board is assembled and rendered.
type Board struct {
	Common
	Categories   []models.Category
	Days         int
	Source       string
	BasePath     string
	BaseURL      string
	SiteDir      string
	Locale       datewindow.Locale
	Location     *time.Location
	Concurrency  int
	FetchTimeout time.Duration
	ContainerID  string
	HostPage     string
}

// API describes HTTP-layer configuration.
type API struct {
	Board
	BindAddr string
}

// Render configures the one-shot static renderer.
type Render struct {
	Board
	Output string
}

// Worker holds configuration for the Kafka -> Elasticsearch ingestion worker.
type Worker struct {
	Common
	Categories     []models.Category
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
	SummaryMax     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	KeepDays  int
	BatchSize int
	Location  *time.Location
}

// Settings converts the board configuration into the immutable pipeline config.
func (b *Board) Settings() (board.Config, error) {
	return board.NewConfig(board.Settings{
		Categories:  b.Categories,
		Days:        b.Days,
		BasePath:    b.BasePath,
		Locale:      b.Locale,
		Location:    b.Location,
		Concurrency: b.Concurrency,
	})
}

// LoadBoard builds a Board config from environment variables.
func LoadBoard() (*Board, error) {
	cats, err := parseCategories(getEnv("BOARD_CATEGORIES", "anime:Anime,cine:Cine,musica:Música"))
	if err != nil {
		return nil, err
	}

	locale, ok := datewindow.LookupLocale(getEnv("BOARD_LOCALE", "es"))
	if !ok {
		return nil, fmt.Errorf("BOARD_LOCALE %q is not supported", os.Getenv("BOARD_LOCALE"))
	}

	loc, err := loadLocation(getEnv("BOARD_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("BOARD_TIMEZONE: %w", err)
	}

	c := &Board{
		Common:       loadCommon(),
		Categories:   cats,
		Days:         getInt("BOARD_DAYS", board.DefaultDays),
		Source:       strings.ToLower(getEnv("BOARD_SOURCE", SourceDir)),
		BasePath:     getEnv("BOARD_BASE_PATH", "noticias"),
		BaseURL:      getEnv("BOARD_BASE_URL", ""),
		SiteDir:      getEnv("BOARD_SITE_DIR", "."),
		Locale:       locale,
		Location:     loc,
		Concurrency:  getInt("BOARD_CONCURRENCY", 1),
		FetchTimeout: getDuration("BOARD_FETCH_TIMEOUT", "15s"),
		ContainerID:  getEnv("BOARD_CONTAINER_ID", "news-container"),
		HostPage:     getEnv("BOARD_HOST_PAGE", ""),
	}

	if c.Days <= 0 {
		return nil, fmt.Errorf("BOARD_DAYS must be positive")
	}
	if c.Concurrency <= 0 {
		return nil, fmt.Errorf("BOARD_CONCURRENCY must be positive")
	}

	switch c.Source {
	case SourceDir:
	case SourceHTTP:
		if c.BaseURL == "" {
			return nil, fmt.Errorf("BOARD_BASE_URL is required when BOARD_SOURCE=http")
		}
	case SourceElasticsearch:
	default:
		return nil, fmt.Errorf("BOARD_SOURCE %q must be one of http, dir, elasticsearch", c.Source)
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	b, err := LoadBoard()
	if err != nil {
		return nil, err
	}
	return &API{
		Board:    *b,
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
	}, nil
}

// LoadRender builds a Render config from environment variables.
func LoadRender() (*Render, error) {
	b, err := LoadBoard()
	if err != nil {
		return nil, err
	}
	return &Render{
		Board:  *b,
		Output: getEnv("BOARD_OUTPUT", "index.html"),
	}, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	cats, err := parseCategories(getEnv("BOARD_CATEGORIES", "anime:Anime,cine:Cine,musica:Música"))
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:         loadCommon(),
		Categories:     cats,
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "news_sources"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "news-board-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 5000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		SummaryMax:     getInt("WORKER_SUMMARY_MAX", processing.DefaultSummaryMax),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.SummaryMax < 0 {
		return nil, fmt.Errorf("WORKER_SUMMARY_MAX cannot be negative")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	loc, err := loadLocation(getEnv("BOARD_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("BOARD_TIMEZONE: %w", err)
	}

	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		KeepDays:  getInt("RETENTION_DAYS", 30),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
		Location:  loc,
	}

	if c.KeepDays <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news_sources"),
	}
}

// parseCategories reads "id:Label,id:Label". A missing label falls back to the id.
func parseCategories(raw string) ([]models.Category, error) {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("BOARD_CATEGORIES must contain at least one category")
	}
	out := make([]models.Category, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		id, label, _ := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if id == "" {
			return nil, fmt.Errorf("BOARD_CATEGORIES entry %q has no id", part)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("BOARD_CATEGORIES repeats %q", id)
		}
		seen[id] = struct{}{}
		if label == "" {
			label = id
		}
		out = append(out, models.Category{ID: id, Label: label})
	}
	return out, nil
}

func loadLocation(name string) (*time.Location, error) {
	if strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
