package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/news-board/backend/internal/config"
	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/dedupe"
	"github.com/DeafMist/news-board/backend/internal/elasticsearch"
	"github.com/DeafMist/news-board/backend/internal/logger"
	"github.com/DeafMist/news-board/backend/internal/models"
	"github.com/DeafMist/news-board/backend/internal/processing"
)

// publication announces a freshly produced source document.
type publication struct {
	Date     string            `json:"date"`
	Category string            `json:"category"`
	Items    []json.RawMessage `json:"items"`
}

type sourceIndexer interface {
	IndexSource(ctx context.Context, doc models.SourceDocument) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// sendToDLQ retries the DLQ write with exponential backoff and reports success.
func sendToDLQ(ctx context.Context, log *slog.Logger, w *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range 5 {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

func processMessage(ctx context.Context, log *slog.Logger, idx sourceIndexer, cache *dedupe.Cache, cfg *config.Worker, msg kafka.Message) error {
	var payload publication
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode publication: %w", err)
	}

	date := strings.TrimSpace(payload.Date)
	if _, err := datewindow.ParseISO(date); err != nil {
		return err
	}

	category := strings.TrimSpace(payload.Category)
	if !knownCategory(cfg.Categories, category) {
		return fmt.Errorf("unknown category %q", category)
	}

	raw := make([]models.RawItem, 0, len(payload.Items))
	for i, item := range payload.Items {
		var it models.RawItem
		if err := json.Unmarshal(item, &it); err != nil {
			return fmt.Errorf("decode item %d: %w", i, err)
		}
		raw = append(raw, it)
	}

	id := processing.SourceID(date, category)
	items := processing.NormalizeItems(raw, cfg.SummaryMax)
	digest, err := processing.Digest(id, items)
	if err != nil {
		return fmt.Errorf("digest %s: %w", id, err)
	}

	if cache.Seen(digest) {
		log.Debug("duplicate publication", slog.String("id", id))
		return nil
	}

	doc := models.SourceDocument{
		ID:         id,
		Date:       date,
		Category:   category,
		Items:      items,
		Digest:     digest,
		IngestedAt: time.Now().UTC(),
	}

	if err := idx.IndexSource(ctx, doc); err != nil {
		return err
	}

	cache.Remember(digest)
	log.Info("indexed source",
		slog.String("id", id),
		slog.Int("items", len(items)),
		slog.Int("dropped", len(raw)-len(items)),
	)
	return nil
}

func knownCategory(cats []models.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}
