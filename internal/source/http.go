package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxDocumentBytes = 8 << 20

// HTTP loads source documents relative to a base URL.
type HTTP struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewHTTP builds an HTTP source. Paths passed to Load are resolved against baseURL.
func NewHTTP(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Load fetches path, always revalidating with the origin. It never retries.
func (h *HTTP) Load(ctx context.Context, path string) Result {
	res := h.load(ctx, path)
	if res.Err != nil {
		h.log.Debug("source load failed", slog.String("path", path), slog.Any("err", res.Err))
	}
	return res
}

func (h *HTTP) load(ctx context.Context, path string) Result {
	target := path
	if h.baseURL != "" {
		target = h.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Failed(path, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	res, err := h.client.Do(req)
	if err != nil {
		return Failed(path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxDocumentBytes))
		return Failed(path, fmt.Errorf("status %s", res.Status))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxDocumentBytes))
	if err != nil {
		return Failed(path, fmt.Errorf("read body: %w", err))
	}

	out := Decode(body)
	if out.Err != nil {
		out.Err = fmt.Errorf("%s: %w", path, out.Err)
	}
	return out
}
