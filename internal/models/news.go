package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Category is one fixed news subject: an identifier used in source file names
// and the label shown on cards.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RawItem is one entry of a source document as produced upstream.
// Every field is optional.
type RawItem struct {
	Title   Text `json:"titulo"`
	Summary Text `json:"resumen"`
	Image   Text `json:"imagen"`
	Link    Text `json:"link"`
}

// UnmarshalJSON accepts any JSON value. Anything that is not an object
// becomes an item with every field empty.
func (r *RawItem) UnmarshalJSON(data []byte) error {
	type plain RawItem
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*r = RawItem{}
		return nil
	}
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = RawItem(p)
	return nil
}

// Text is a string field that tolerates non-string JSON values.
// Non-zero numbers and true keep their literal text; zero, false, null,
// objects and arrays are empty.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*t = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[', 'n', 'f':
		*t = ""
	default:
		if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil && f == 0 {
			*t = ""
			return nil
		}
		*t = Text(trimmed)
	}
	return nil
}

// TaggedItem is a RawItem with defaults applied and its category label attached.
type TaggedItem struct {
	Title   string `json:"titulo"`
	Summary string `json:"resumen"`
	Image   string `json:"imagen"`
	Link    string `json:"link"`
	Tag     string `json:"tag"`
}

// SourceDocument is one date × category document as stored in Elasticsearch.
type SourceDocument struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	Category   string    `json:"category"`
	Items      []RawItem `json:"items"`
	Digest     string    `json:"digest"`
	IngestedAt time.Time `json:"ingested_at"`
}
