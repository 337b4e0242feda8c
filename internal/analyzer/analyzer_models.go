package analyzer

import (
	"html"
	"html/template"
	"strings"
)

// Result is the outcome of analyzing one document.
type Result struct {
	// Score is the relevance score, rounded to two decimals and clamped to [0, 1].
	Score float64 `json:"score"`

	// FoundRoles maps each active role to the keywords it matched, as they
	// appear in the text, in discovery order (longest keyword first).
	// Roles with no match are absent.
	FoundRoles map[string][]string `json:"found_roles"`

	// Roles lists the active roles in dictionary order.
	Roles []string `json:"roles"`

	// Highlighted is the content with every claimed occurrence wrapped in
	// <mark class="hl-{role}">. Text outside the marks is not escaped.
	Highlighted string `json:"highlighted_text"`

	// Spans are the highlighted occurrences, sorted by Start.
	Spans []Span `json:"spans"`

	// Breakdown shows how the unclamped score was assembled.
	Breakdown Breakdown `json:"breakdown"`

	content string
}

// Span is one highlighted occurrence. Start and End are byte offsets into
// the analyzed content.
type Span struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Role    string `json:"role"`
	Keyword string `json:"keyword"`
}

// Breakdown holds the score components before rounding and clamping.
type Breakdown struct {
	Base    float64 `json:"base"`
	Synergy float64 `json:"synergy"`
	Group   float64 `json:"group"`
	Raw     float64 `json:"raw"`
}

// Active reports whether role matched at least one keyword.
func (r Result) Active(role string) bool {
	_, ok := r.FoundRoles[role]
	return ok
}

// HTML renders the content with highlights, escaping all text outside the
// mark elements. Use it instead of Highlighted when the content is untrusted.
func (r Result) HTML() template.HTML {
	return template.HTML(render(r.content, r.Spans, html.EscapeString))
}

// MarkClass is the CSS class used for a role's highlights.
func MarkClass(role string) string {
	return "hl-" + role
}

func render(content string, spans []Span, esc func(string) string) string {
	if len(spans) == 0 {
		return esc(content)
	}
	var b strings.Builder
	b.Grow(len(content) + len(spans)*32)
	last := 0
	for _, s := range spans {
		b.WriteString(esc(content[last:s.Start]))
		b.WriteString(`<mark class="`)
		b.WriteString(html.EscapeString(MarkClass(s.Role)))
		b.WriteString(`">`)
		b.WriteString(esc(content[s.Start:s.End]))
		b.WriteString(`</mark>`)
		last = s.End
	}
	b.WriteString(esc(content[last:]))
	return b.String()
}

func identity(s string) string { return s }
