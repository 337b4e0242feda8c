// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

// NewDummyLogger returns an empty recording logger.
func NewDummyLogger() *DummyLogger { return &DummyLogger{} }

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Analyzer ──────────────────────────────────────────────────────────

// DummyAnalyzer implements analyzer.Analyzer with canned scores.
// Scores maps a substring to the score returned when content contains it;
// the first match in Order wins. Calls records every analyzed content.
type DummyAnalyzer struct {
	Order  []string
	Scores map[string]float64

	mu    sync.Mutex
	Calls []string
}

func (d *DummyAnalyzer) Analyze(content string) analyzer.Result {
	d.mu.Lock()
	d.Calls = append(d.Calls, content)
	d.mu.Unlock()

	res := analyzer.Result{
		FoundRoles:  map[string][]string{},
		Roles:       []string{},
		Spans:       []analyzer.Span{},
		Highlighted: content,
	}
	for _, key := range d.Order {
		if strings.Contains(content, key) {
			res.Score = d.Scores[key]
			break
		}
	}
	return res
}

// ─── Corpus fixtures ───────────────────────────────────────────────────

// WriteFiles creates files under dir. Keys are slash-separated relative
// paths; parent directories are created as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
