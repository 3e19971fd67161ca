package datewindow

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the fixed strings used to present a day on the board.
type Locale struct {
	Code        string
	months      [12]string
	longLayout  string
	dayFirst    bool
	heading     string
	untitled    string
	altFallback string
}

// Spanish is the default board locale.
var Spanish = Locale{
	Code: "es",
	months: [12]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	},
	longLayout:  "%d de %s de %d",
	dayFirst:    true,
	heading:     "📅 Noticias del %s",
	untitled:    "Sin título",
	altFallback: "Noticia",
}

// English is available for boards configured with BOARD_LOCALE=en.
var English = Locale{
	Code: "en",
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	longLayout:  "%s %d, %d",
	heading:     "📅 News for %s",
	untitled:    "Untitled",
	altFallback: "News",
}

// LookupLocale resolves a locale code such as "es" or "en-US".
func LookupLocale(code string) (Locale, bool) {
	lang, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(code)), "-")
	switch lang {
	case "", "es":
		return Spanish, true
	case "en":
		return English, true
	default:
		return Locale{}, false
	}
}

// Heading renders the day heading for an already formatted long date.
func (l Locale) Heading(longDate string) string {
	return fmt.Sprintf(l.heading, longDate)
}

// Untitled is the card title shown for items without one.
func (l Locale) Untitled() string { return l.untitled }

// AltFallback is the image alt text for items without a title.
func (l Locale) AltFallback() string { return l.altFallback }

func (l Locale) long(ts time.Time) string {
	month := l.months[ts.Month()-1]
	if l.dayFirst {
		return fmt.Sprintf(l.longLayout, ts.Day(), month, ts.Year())
	}
	return fmt.Sprintf(l.longLayout, month, ts.Day(), ts.Year())
}
