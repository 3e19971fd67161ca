package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/DeafMist/news-board/backend/internal/models"
)

var whitespace = regexp.MustCompile(`\s+`)

// DefaultSummaryMax is the summary length used by the upstream generator.
const DefaultSummaryMax = 220

// Ellipsis marks a truncated summary.
const Ellipsis = "…"

// CleanText decodes HTML entities and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// Summarize cleans text and cuts it to at most maxRunes runes, ellipsis included.
// maxRunes <= 0 disables truncation.
func Summarize(text string, maxRunes int) string {
	s := CleanText(text)
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRightFunc(string(runes[:maxRunes-1]), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	return cut + Ellipsis
}

// NormalizeItems cleans every item, drops items without a title and
// removes repeated titles (case-insensitive), keeping the first occurrence.
func NormalizeItems(items []models.RawItem, summaryMax int) []models.RawItem {
	out := make([]models.RawItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		title := CleanText(string(it.Title))
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, models.RawItem{
			Title:   models.Text(title),
			Summary: models.Text(Summarize(string(it.Summary), summaryMax)),
			Image:   models.Text(strings.TrimSpace(string(it.Image))),
			Link:    models.Text(strings.TrimSpace(string(it.Link))),
		})
	}
	return out
}

// SourceID is the document ID for a date and category, matching the source file stem.
func SourceID(date, category string) string {
	return date + "-" + category
}

// Digest hashes a source document's identity and items so identical
// republications can be recognized.
func Digest(id string, items []models.RawItem) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	s := sha1.Sum(append([]byte(id+"|"), payload...))
	return hex.EncodeToString(s[:]), nil
}
