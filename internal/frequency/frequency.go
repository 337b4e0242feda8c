// Package frequency counts the most common words of thematic and
// non-thematic documents.
package frequency

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config controls classification and counting.
type Config struct {
	// Threshold is the minimum score of a thematic document.
	Threshold float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`

	// MinLength is the minimum word length in runes.
	MinLength int `json:"min_length" yaml:"min_length" mapstructure:"min_length"`

	// Limit is the number of words reported per bucket.
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// StopWords are excluded from counting, compared lowercased.
	StopWords []string `json:"stop_words" yaml:"stop_words" mapstructure:"stop_words"`
}

// DefaultConfig returns the standard settings: score >= 0.5 is thematic,
// words of at least 4 letters, top 30 per bucket.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.5,
		MinLength: 4,
		Limit:     30,
		StopWords: DefaultStopWords,
	}
}

// Doc is one scored document.
type Doc struct {
	Text  string
	Score float64
}

// WordCount is a word and how often it occurred.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Report holds the top words per bucket.
type Report struct {
	Threshold    float64     `json:"threshold"`
	ThematicDocs int         `json:"thematic_docs"`
	OtherDocs    int         `json:"other_docs"`
	Thematic     []WordCount `json:"thematic"`
	Other        []WordCount `json:"other"`
}

// Aggregator holds the immutable counting settings.
type Aggregator struct {
	cfg  Config
	stop map[string]bool
}

// New returns an Aggregator. Non-positive MinLength and Limit fall back to
// the defaults.
func New(cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	lower := cases.Lower(language.Polish)
	stop := make(map[string]bool, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[lower.String(strings.TrimSpace(w))] = true
	}
	return &Aggregator{cfg: cfg, stop: stop}
}

// Aggregate counts words over docs.
func (a *Aggregator) Aggregate(docs []Doc) Report {
	c := a.NewCounter()
	for _, d := range docs {
		c.Add(d)
	}
	return c.Report()
}

// NewCounter starts an incremental count. A Counter is not safe for
// concurrent use.
func (a *Aggregator) NewCounter() *Counter {
	return &Counter{
		agg:      a,
		lower:    cases.Lower(language.Polish),
		thematic: newBucket(),
		other:    newBucket(),
	}
}

// Counter accumulates word counts document by document.
type Counter struct {
	agg      *Aggregator
	lower    cases.Caser
	thematic *bucket
	other    *bucket
}

// Add classifies doc and counts its words.
func (c *Counter) Add(doc Doc) {
	b := c.other
	if doc.Score >= c.agg.cfg.Threshold {
		b = c.thematic
	}
	b.docs++
	for _, w := range Words(doc.Text) {
		w = c.lower.String(w)
		if utf8.RuneCountInString(w) < c.agg.cfg.MinLength || c.agg.stop[w] {
			continue
		}
		b.add(w)
	}
}

// Report returns the top words of each bucket.
func (c *Counter) Report() Report {
	return Report{
		Threshold:    c.agg.cfg.Threshold,
		ThematicDocs: c.thematic.docs,
		OtherDocs:    c.other.docs,
		Thematic:     c.thematic.top(c.agg.cfg.Limit),
		Other:        c.other.top(c.agg.cfg.Limit),
	}
}

// Words splits text into maximal runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

type bucket struct {
	docs   int
	counts map[string]int
	order  []string
}

func newBucket() *bucket {
	return &bucket{counts: make(map[string]int)}
}

func (b *bucket) add(w string) {
	if _, ok := b.counts[w]; !ok {
		b.order = append(b.order, w)
	}
	b.counts[w]++
}

// top returns the n most frequent words; ties keep first-encounter order.
func (b *bucket) top(n int) []WordCount {
	out := make([]WordCount, len(b.order))
	for i, w := range b.order {
		out[i] = WordCount{Word: w, Count: b.counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
