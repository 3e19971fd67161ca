package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/PuerkitoBio/goquery"

	"github.com/DeafMist/news-board/backend/internal/board"
)

// DefaultContainerID is the element the board appends its day blocks to.
const DefaultContainerID = "news-container"

// DefaultHost is a minimal page shell with an empty board container.
//
//go:embed host.html
var DefaultHost []byte

const blocksHTML = `{{range .}}<div class="news-day">
  <div class="date-title">{{.Heading}}</div>
  <hr>
  <div class="news-list">
{{- range .Cards}}
    <a class="news-card" href="{{.Href}}" target="{{.Target}}" rel="noopener noreferrer">
      {{- if .HasImage}}
      <img class="news-img" src="{{.ImageURL}}" alt="{{.ImageAlt}}" loading="lazy">
      {{- end}}
      <div class="news-content">
        <h2>{{.Title}}</h2>
        <p>{{.Summary}}</p>
        <span class="tag">{{.Tag}}</span>
      </div>
    </a>
{{- end}}
  </div>
</div>
{{end}}`

var blocksTmpl = template.Must(template.New("blocks").Parse(blocksHTML))

// Fragment renders blocks as the markup appended to the container.
func Fragment(blocks []board.DayBlock) (template.HTML, error) {
	var buf bytes.Buffer
	if err := blocksTmpl.Execute(&buf, blocks); err != nil {
		return "", fmt.Errorf("render blocks: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Inject appends blocks to the element with id containerID inside host.
// When the page has no such element, host is returned unchanged and the
// second result is false.
func Inject(host []byte, containerID string, blocks []board.DayBlock) ([]byte, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(host))
	if err != nil {
		return nil, false, fmt.Errorf("parse host page: %w", err)
	}

	container := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == containerID
	}).First()
	if container.Length() == 0 {
		return host, false, nil
	}

	if len(blocks) > 0 {
		fragment, err := Fragment(blocks)
		if err != nil {
			return nil, false, err
		}
		container.AppendHtml(string(fragment))
	}

	out, err := doc.Html()
	if err != nil {
		return nil, false, fmt.Errorf("serialize page: %w", err)
	}
	return []byte(out), true, nil
}
