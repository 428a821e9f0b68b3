package web

import (
	"bytes"
	"regexp"
	"sync"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// highlightStyle is the chroma style behind static highlight.css.
const highlightStyle = "github-dark"

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	codeFormatter *chromahtml.Formatter

	highlightCSSOnce sync.Once
	highlightCSS     []byte
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	// Keep chroma token classes on highlighted fenced code.
	htmlSanitizer.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("pre", "code", "span")

	codeFormatter = chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(true),
	)
}

// RenderMarkdown converts a markdown string to sanitized HTML. Fenced code
// blocks are syntax highlighted. Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// HighlightCode renders code as a numbered, syntax highlighted block. The
// language is detected from the code; undetected code renders as plain
// text. Returns empty string for empty input.
func HighlightCode(code string) string {
	if code == "" {
		return ""
	}

	lexer := lexers.Analyse(code)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plainCode(code)
	}

	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, styles.Get(highlightStyle), iterator); err != nil {
		return plainCode(code)
	}
	return buf.String()
}

// HighlightCSS returns the stylesheet for the classes HighlightCode and
// fenced code blocks emit.
func HighlightCSS() []byte {
	highlightCSSOnce.Do(func() {
		var buf bytes.Buffer
		if err := codeFormatter.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
			return
		}
		highlightCSS = buf.Bytes()
	})
	return highlightCSS
}

func plainCode(code string) string {
	return `<pre class="chroma"><code>` + templ.EscapeString(code) + `</code></pre>`
}
