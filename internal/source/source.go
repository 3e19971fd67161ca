package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DeafMist/news-board/backend/internal/models"
)

// ErrUnavailable wraps every reason a source document could not be used:
// transport failure, non-success status, missing file or malformed JSON.
var ErrUnavailable = errors.New("source unavailable")

// Status classifies the outcome of a load.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of loading one source document.
// Callers that only care about data should check Empty.
type Result struct {
	Status Status
	Items  []models.RawItem
	Err    error
}

// Empty reports whether the load contributed no items, whatever the cause.
func (r Result) Empty() bool {
	return r.Status != StatusOK || len(r.Items) == 0
}

// Source loads the document stored at a path built with Path.
type Source interface {
	Load(ctx context.Context, path string) Result
}

// Path builds {base}/{date}-{categoryID}.json.
func Path(base, date, categoryID string) string {
	name := date + "-" + categoryID + ".json"
	base = strings.TrimRight(base, "/")
	if base == "" {
		return name
	}
	return base + "/" + name
}

// Stem returns the file name of path without directory or .json suffix,
// e.g. "2025-09-07-anime".
func Stem(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(path, ".json")
}

// Failed builds an error result wrapping cause in ErrUnavailable.
func Failed(path string, cause error) Result {
	return Result{Status: StatusError, Err: fmt.Errorf("%w: %s: %v", ErrUnavailable, path, cause)}
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// Decode parses a source document body. Only a top-level JSON array is data.
func Decode(body []byte) Result {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if json.Valid(trimmed) {
			return Result{Status: StatusError, Err: fmt.Errorf("%w: top-level value is not an array", ErrUnavailable)}
		}
		return Result{Status: StatusError, Err: fmt.Errorf("%w: malformed json", ErrUnavailable)}
	}

	var items []models.RawItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Result{Status: StatusError, Err: fmt.Errorf("%w: decode: %v", ErrUnavailable, err)}
	}
	if len(items) == 0 {
		return Result{Status: StatusEmpty}
	}
	return Result{Status: StatusOK, Items: items}
}
