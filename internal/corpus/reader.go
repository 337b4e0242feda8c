package corpus

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// blockTags end a line when extracting text from HTML, so that words in
// adjacent paragraphs or cells are not glued together.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// Reader turns raw document bytes into plain UTF-8 text.
type Reader struct {
	markdown goldmark.Markdown
}

// NewReader returns a Reader with GitHub-flavoured markdown support.
func NewReader() *Reader {
	return &Reader{markdown: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Decode converts data to text according to the extension of name.
// Bytes that are not valid UTF-8 are read as Windows-1250, the usual
// legacy encoding of Polish text files.
func (r *Reader) Decode(name string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1250.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding %s as windows-1250: %w", name, err)
		}
		data = decoded
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return htmlText(bytes.NewReader(data))
	case ".md", ".markdown":
		var buf bytes.Buffer
		if err := r.markdown.Convert(data, &buf); err != nil {
			return "", fmt.Errorf("rendering markdown %s: %w", name, err)
		}
		return htmlText(&buf)
	default:
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	}
}

func htmlText(src io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(src)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	writeText(doc.Find("body"), &b)
	return tidyLines(b.String()), nil
}

func writeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		n := c.Get(0)
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			block := blockTags[n.Data]
			if block {
				b.WriteByte('\n')
			}
			writeText(c, b)
			if block {
				b.WriteByte('\n')
			}
		}
	})
}

// tidyLines collapses runs of blank space: each line is trimmed and
// consecutive empty lines are dropped.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
