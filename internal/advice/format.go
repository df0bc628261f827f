package advice

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	boldSpan   = regexp.MustCompile(`(\*\*.*?\*\*)`)
	listMarker = regexp.MustCompile(`(\d+\.\s)`)

	// Raw HTML passes through goldmark untouched; policy is the only filter.
	markdown = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()))

	policy = newPolicy()
)

// AllowedTags are the only elements model output may produce.
var AllowedTags = []string{"p", "h1", "h2", "h3", "h4", "b", "i", "strong", "em", "ul", "ol", "li", "br"}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs("class").Globally()
	return p
}

// FormatResponse turns untrusted model text into the advice fragment shown
// to applicants. The result is safe to embed without escaping whatever the
// input holds.
func FormatResponse(raw string) template.HTML {
	// Bold spans double as section headers; give the prose after them its own line.
	text := boldSpan.ReplaceAllString(raw, "$1\n")
	// One enumerated item per line.
	text = listMarker.ReplaceAllString(text, "\n$1")

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<p>")
		buf.WriteString(template.HTMLEscapeString(raw))
		buf.WriteString("</p>")
	}

	clean := policy.Sanitize(buf.String())

	clean = strings.ReplaceAll(clean, "<h3>", `<h3 class="advice-heading">`)
	clean = strings.ReplaceAll(clean, "<p>", `<p class="advice-paragraph">`)

	return template.HTML(`<div class="advice-content">` + clean + `</div>`)
}

// FormatUnavailable renders the notice shown when no advice could be
// generated. msg is escaped.
func FormatUnavailable(msg string) template.HTML {
	return template.HTML(`<div class="advice-content advice-unavailable"><p class="advice-paragraph">` +
		template.HTMLEscapeString(msg) + `</p></div>`)
}
