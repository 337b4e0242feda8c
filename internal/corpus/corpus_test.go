package corpus_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/roles"
	"github.com/raysh454/imola/internal/testutil"
)

func newCorpus(t *testing.T, sources ...corpus.Source) (*corpus.Corpus, *testutil.DummyLogger) {
	t.Helper()
	logger := testutil.NewDummyLogger()
	c, err := corpus.New(corpus.Config{Sources: sources}, analyzer.New(roles.Default(), logger), logger)
	if err != nil {
		t.Fatalf("corpus.New: %v", err)
	}
	return c, logger
}

func TestList_ScoresEveryDocument(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"senna.txt":         "Ayrton Senna zginął w wypadku na torze Imola.",
		"ciasto.txt":        "Przepis na sernik z rodzynkami.",
		"archiwum/1994.txt": "Wypadek w zakręcie Tamburello, 1 maja 1994.",
		"notatki.csv":       "senna,wypadek",
	})
	c, _ := newCorpus(t, corpus.Source{Label: "artykuly", Dir: dir})

	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		if e.Source != "artykuly" {
			t.Errorf("entry %s has source %q", e.Name, e.Source)
		}
	}
	want := []string{"archiwum/1994.txt", "ciasto.txt", "senna.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	byName := map[string]corpus.Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if byName["ciasto.txt"].Score != 0 {
		t.Errorf("ciasto score = %v, want 0", byName["ciasto.txt"].Score)
	}
	if byName["senna.txt"].Score < 0.5 {
		t.Errorf("senna score = %v, want thematic", byName["senna.txt"].Score)
	}
}

func TestList_IncludeExclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.txt":       "senna",
		"draft/b.txt": "senna",
		"keep/c.txt":  "senna",
		"keep/d.html": "<p>senna</p>",
		"keep/e.jpeg": "binary",
		"skip/f.txt":  "senna",
	})
	c, _ := newCorpus(t, corpus.Source{
		Label:   "x",
		Dir:     dir,
		Include: []string{"**/*.txt", "keep/*.html"},
		Exclude: []string{"draft/**", "skip/*"},
	})

	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"a.txt", "keep/c.txt", "keep/d.html"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestList_MissingSourceDir(t *testing.T) {
	t.Parallel()
	c, _ := newCorpus(t, corpus.Source{Label: "gone", Dir: filepath.Join(t.TempDir(), "nope")})

	if _, err := c.List(context.Background()); err == nil {
		t.Fatal("expected error for missing source dir")
	}
}

func TestList_SkipsUnreadableDocuments(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"ok.txt":  "senna",
		"big.txt": strings.Repeat("x", 64),
	})
	logger := testutil.NewDummyLogger()
	c, err := corpus.New(corpus.Config{
		Sources:     []corpus.Source{{Label: "s", Dir: dir}},
		MaxFileSize: 32,
	}, analyzer.New(nil, nil), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "ok.txt" {
		t.Errorf("entries = %+v", entries)
	}
	if logger.WarnCount() != 1 {
		t.Errorf("warnings = %v", logger.Warns)
	}
}

func TestList_Cancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"a.txt": "senna"})
	c, _ := newCorpus(t, corpus.Source{Label: "s", Dir: dir})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"senna.txt":    {Data: []byte("Senna i wypadek")},
		"private.txt":  {Data: []byte("senna")},
		"sub/inne.txt": {Data: []byte("nic")},
	}
	src := corpus.Source{Label: "mem", Exclude: []string{"private.txt"}}.WithFS(fsys)
	c, _ := newCorpus(t, src)
	ctx := context.Background()

	doc, err := c.Document(ctx, "mem", "senna.txt")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Text != "Senna i wypadek" || doc.Score != 0.65 {
		t.Errorf("doc = %q score %v", doc.Text, doc.Score)
	}
	if !strings.Contains(doc.Result.Highlighted, `<mark class="hl-sprawca">Senna</mark>`) {
		t.Errorf("highlighted = %q", doc.Result.Highlighted)
	}

	if _, err := c.Document(ctx, "mem", "sub/inne.txt"); err != nil {
		t.Errorf("nested document: %v", err)
	}

	for _, tc := range []struct {
		source, name string
		want         error
	}{
		{"nope", "senna.txt", corpus.ErrNotFound},
		{"mem", "missing.txt", corpus.ErrNotFound},
		{"mem", "private.txt", corpus.ErrNotFound},
		{"mem", "../etc/passwd", corpus.ErrInvalidName},
		{"mem", "/senna.txt", corpus.ErrInvalidName},
	} {
		if _, err := c.Document(ctx, tc.source, tc.name); !errors.Is(err, tc.want) {
			t.Errorf("Document(%q, %q) err = %v, want %v", tc.source, tc.name, err, tc.want)
		}
	}
}

func TestNew_RejectsBadSources(t *testing.T) {
	t.Parallel()
	a := analyzer.New(nil, nil)
	tests := []corpus.Config{
		{Sources: []corpus.Source{{Label: "", Dir: "x"}}},
		{Sources: []corpus.Source{{Label: "a/b", Dir: "x"}}},
		{Sources: []corpus.Source{{Label: "a"}}},
		{Sources: []corpus.Source{{Label: "a", Dir: "x"}, {Label: "a", Dir: "y"}}},
		{Sources: []corpus.Source{{Label: "a", Dir: "x", Include: []string{"[unclosed"}}}},
	}
	for i, cfg := range tests {
		if _, err := corpus.New(cfg, a, nil); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if _, err := corpus.New(corpus.Config{}, nil, nil); err == nil {
		t.Error("expected error for nil analyzer")
	}
}

func TestSources_DeclarationOrder(t *testing.T) {
	t.Parallel()
	c, _ := newCorpus(t,
		corpus.Source{Label: "zeta", Dir: "z"},
		corpus.Source{Label: "alfa", Dir: "a"},
	)
	if got := c.Sources(); !reflect.DeepEqual(got, []string{"zeta", "alfa"}) {
		t.Errorf("Sources = %v", got)
	}
}

func TestWalk_AnalyzesDecodedText(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"a.html": {Data: []byte("<p>Senna</p><p>i <b>wypadek</b></p>")},
		"b.txt":  {Data: []byte("nic ciekawego")},
	}
	dummy := &testutil.DummyAnalyzer{
		Order:  []string{"Senna"},
		Scores: map[string]float64{"Senna": 0.9},
	}
	c, err := corpus.New(corpus.Config{Sources: []corpus.Source{corpus.Source{Label: "mem"}.WithFS(fsys)}}, dummy, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Score != 0.9 || entries[1].Score != 0 {
		t.Fatalf("entries = %+v", entries)
	}
	if len(dummy.Calls) != 2 {
		t.Fatalf("calls = %q", dummy.Calls)
	}
	html := dummy.Calls[0]
	if strings.Contains(html, "<") || !strings.Contains(html, "Senna") || !strings.Contains(html, "wypadek") {
		t.Errorf("analyzer got %q, want extracted text", html)
	}
	if dummy.Calls[1] != "nic ciekawego" {
		t.Errorf("analyzer got %q", dummy.Calls[1])
	}
}
