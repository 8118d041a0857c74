// Package conv converts assistant replies between Markdown, Telegram HTML and
// plain text.
package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func renderHTML(md string) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse([]byte(md)), renderer)
}

// MarkdownToTelegramHTML renders md and strips every tag Telegram rejects.
func MarkdownToTelegramHTML(md string) string {
	return strings.TrimSpace(tgPolicy.Sanitize(string(renderHTML(md))))
}

// MarkdownToPlain renders md as readable plain text. It is the fallback when a
// client refuses the HTML variant.
func MarkdownToPlain(md string) string {
	return HTMLToPlain(string(renderHTML(md)))
}

// HTMLToPlain drops markup from s. Unparseable input comes back trimmed.
func HTMLToPlain(s string) string {
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(text)
}

// Split cuts text into chunks of at most maxLen bytes, preferring newline
// boundaries in the latter two thirds of a chunk.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
