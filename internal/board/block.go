package board

import (
	"github.com/DeafMist/news-board/backend/internal/datewindow"
	"github.com/DeafMist/news-board/backend/internal/models"
)

// CardTarget opens card links in a new tab.
const CardTarget = "_blank"

// DayBlock is the render model for one date: a heading, a separator and the cards.
// The separator carries no data, so adapters emit it between Heading and Cards.
type DayBlock struct {
	Date    string `json:"date"`
	Heading string `json:"heading"`
	Cards   []Card `json:"cards"`
}

// Card is one clickable news entry.
type Card struct {
	Href     string `json:"href"`
	Target   string `json:"target"`
	ImageURL string `json:"image_url,omitempty"`
	ImageAlt string `json:"image_alt"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Tag      string `json:"tag"`
}

// HasImage reports whether the card should show an image.
func (c Card) HasImage() bool { return c.ImageURL != "" }

// NewDayBlock maps a date and its tagged items to a block. It does no I/O.
func NewDayBlock(date string, items []models.TaggedItem, locale datewindow.Locale) (DayBlock, error) {
	label, err := datewindow.LongDateLabel(date, locale)
	if err != nil {
		return DayBlock{}, err
	}

	cards := make([]Card, 0, len(items))
	for _, it := range items {
		cards = append(cards, newCard(it, locale))
	}

	return DayBlock{
		Date:    date,
		Heading: locale.Heading(label),
		Cards:   cards,
	}, nil
}

func newCard(it models.TaggedItem, locale datewindow.Locale) Card {
	href := it.Link
	if href == "" {
		href = PlaceholderLink
	}
	title := it.Title
	alt := it.Title
	if title == "" {
		title = locale.Untitled()
		alt = locale.AltFallback()
	}
	return Card{
		Href:     href,
		Target:   CardTarget,
		ImageURL: it.Image,
		ImageAlt: alt,
		Title:    title,
		Summary:  it.Summary,
		Tag:      it.Tag,
	}
}
