// Package corpus lists and scores the documents kept in labeled source
// folders. It is the only layer that touches the filesystem: files are
// read and decoded here and the text is handed to an analyzer.Analyzer.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/logging"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidName = errors.New("invalid document name")
)

// DefaultInclude selects the document types the Reader understands.
var DefaultInclude = []string{"**/*.txt", "**/*.md", "**/*.markdown", "**/*.html", "**/*.htm"}

// Source is one labeled folder of documents. Include and Exclude are
// doublestar patterns matched against slash-separated paths relative to Dir.
type Source struct {
	Label   string   `json:"label" yaml:"label" mapstructure:"label"`
	Dir     string   `json:"dir" yaml:"dir" mapstructure:"dir"`
	Include []string `json:"include,omitempty" yaml:"include,omitempty" mapstructure:"include"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude"`

	fsys fs.FS
}

// Entry is one scored document in a listing.
type Entry struct {
	Name   string   `json:"name"`
	Source string   `json:"source"`
	Path   string   `json:"path"`
	Score  float64  `json:"score"`
	Roles  []string `json:"roles"`
}

// Document is a scored document with its decoded text.
type Document struct {
	Entry
	Text   string          `json:"text"`
	Result analyzer.Result `json:"result"`
}

// Corpus scores documents from a fixed set of sources.
type Corpus struct {
	sources  []Source
	byLabel  map[string]int
	analyzer analyzer.Analyzer
	reader   *Reader
	maxSize  int64
	logger   logging.Logger
}

// New validates cfg and returns a Corpus that analyzes documents with a.
func New(cfg Config, a analyzer.Analyzer, logger logging.Logger) (*Corpus, error) {
	if a == nil {
		return nil, errors.New("corpus: nil analyzer")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Corpus{
		byLabel:  make(map[string]int, len(cfg.Sources)),
		analyzer: a,
		reader:   NewReader(),
		maxSize:  cfg.MaxFileSize,
		logger:   logger.With(logging.Field{Key: "component", Value: "corpus"}),
	}
	if c.maxSize <= 0 {
		c.maxSize = DefaultMaxFileSize
	}

	for i, src := range cfg.Sources {
		src.Label = strings.TrimSpace(src.Label)
		switch {
		case src.Label == "":
			return nil, fmt.Errorf("corpus: source #%d has no label", i+1)
		case strings.ContainsAny(src.Label, `/\`):
			return nil, fmt.Errorf("corpus: source label %q must not contain path separators", src.Label)
		case src.Dir == "" && src.fsys == nil:
			return nil, fmt.Errorf("corpus: source %q has no dir", src.Label)
		}
		if _, dup := c.byLabel[src.Label]; dup {
			return nil, fmt.Errorf("corpus: source %q declared more than once", src.Label)
		}
		if len(src.Include) == 0 {
			src.Include = DefaultInclude
		}
		for _, p := range append(append([]string(nil), src.Include...), src.Exclude...) {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("corpus: source %q: invalid pattern %q", src.Label, p)
			}
		}
		if src.fsys == nil {
			src.fsys = os.DirFS(src.Dir)
		}
		c.byLabel[src.Label] = len(c.sources)
		c.sources = append(c.sources, src)
	}
	return c, nil
}

// WithFS returns a copy of s that reads from fsys instead of Dir.
func (s Source) WithFS(fsys fs.FS) Source {
	s.fsys = fsys
	return s
}

// Sources returns the configured source labels in declaration order.
func (c *Corpus) Sources() []string {
	out := make([]string, len(c.sources))
	for i, s := range c.sources {
		out[i] = s.Label
	}
	return out
}

// List scores every document of every source. Files that cannot be read
// are logged and skipped; a source folder that cannot be listed is an error.
func (c *Corpus) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := c.Walk(ctx, func(doc Document) error {
		entries = append(entries, doc.Entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("listed documents", logging.Field{Key: "count", Value: len(entries)})
	return entries, nil
}

// Walk reads, decodes and analyzes every document, calling fn for each in
// source order then name order. It stops at the first error returned by fn
// or when ctx is cancelled.
func (c *Corpus) Walk(ctx context.Context, fn func(Document) error) error {
	for _, src := range c.sources {
		names, err := src.names()
		if err != nil {
			return fmt.Errorf("listing source %q: %w", src.Label, err)
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := c.load(src, name)
			if err != nil {
				c.logger.Warn("skipping unreadable document",
					logging.Field{Key: "source", Value: src.Label},
					logging.Field{Key: "name", Value: name},
					logging.Field{Key: "error", Value: err.Error()})
				continue
			}
			if err := fn(*doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Document reads and analyzes one document. Unknown sources and names
// that are not listed by the source yield ErrNotFound.
func (c *Corpus) Document(ctx context.Context, source, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := c.byLabel[source]
	if !ok {
		return nil, fmt.Errorf("source %q: %w", source, ErrNotFound)
	}
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	src := c.sources[i]
	if !src.selects(name) {
		return nil, fmt.Errorf("%s/%s: %w", source, name, ErrNotFound)
	}
	doc, err := c.load(src, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", source, name, ErrNotFound)
	}
	return doc, err
}

// Analyze scores ad-hoc text with the corpus analyzer.
func (c *Corpus) Analyze(text string) analyzer.Result {
	return c.analyzer.Analyze(text)
}

func (c *Corpus) load(src Source, name string) (*Document, error) {
	info, err := fs.Stat(src.fsys, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", name, fs.ErrNotExist)
	}
	if info.Size() > c.maxSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", name, info.Size(), c.maxSize)
	}
	data, err := fs.ReadFile(src.fsys, name)
	if err != nil {
		return nil, err
	}
	text, err := c.reader.Decode(name, data)
	if err != nil {
		return nil, err
	}
	res := c.analyzer.Analyze(text)
	return &Document{
		Entry: Entry{
			Name:   name,
			Source: src.Label,
			Path:   src.displayPath(name),
			Score:  res.Score,
			Roles:  res.Roles,
		},
		Text:   text,
		Result: res,
	}, nil
}

func (s Source) displayPath(name string) string {
	if s.Dir == "" {
		return name
	}
	return strings.TrimSuffix(s.Dir, "/") + "/" + name
}

// names returns the selected files of the source, sorted.
func (s Source) names() ([]string, error) {
	if _, err := fs.Stat(s.fsys, "."); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range s.Include {
		matches, err := doublestar.Glob(s.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if seen[m] || s.excluded(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s Source) selects(name string) bool {
	if s.excluded(name) {
		return false
	}
	for _, p := range s.Include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (s Source) excluded(name string) bool {
	for _, p := range s.Exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
