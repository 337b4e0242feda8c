package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/frequency"
	"github.com/raysh454/imola/internal/logging"
	"github.com/raysh454/imola/internal/roles"
)

// Application is the runtime state container shared by the CLI commands and
// the HTTP server. Everything it holds is read-only after NewApplication,
// so one Application can serve concurrent requests.
type Application struct {
	Config     *Config
	Logger     logging.Logger
	Dictionary *roles.Dictionary
	Engine     *analyzer.Engine
	Corpus     *corpus.Corpus
	Words      *frequency.Aggregator
}

// NewApplication loads the dictionary and wires the engine, corpus and
// frequency aggregator. A malformed dictionary fails here, before any
// document is analyzed.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := logger.With(logging.Field{Key: "component", Value: "app"})

	dict := roles.Default()
	if cfg.DictionaryPath != "" {
		var err error
		dict, err = roles.Load(cfg.DictionaryPath)
		if err != nil {
			return nil, err
		}
	}
	for _, w := range dict.Warnings() {
		l.Warn("dictionary warning", logging.Field{Key: "warning", Value: w})
	}

	engine := analyzer.New(dict, logger)
	c, err := corpus.New(cfg.Corpus, engine, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring corpus: %w", err)
	}

	l.Info("application ready",
		logging.Field{Key: "roles", Value: len(dict.Names())},
		logging.Field{Key: "sources", Value: c.Sources()},
		logging.Field{Key: "max_score", Value: dict.MaxScore()})

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Dictionary: dict,
		Engine:     engine,
		Corpus:     c,
		Words:      frequency.New(cfg.Frequency),
	}, nil
}

// ListOptions selects and orders a corpus listing.
type ListOptions struct {
	Source string
	Sort   corpus.SortKey
	Page   int
	Size   int
}

// List scores the corpus and returns one page of it.
func (a *Application) List(ctx context.Context, opts ListOptions) (corpus.PageResult, error) {
	if a == nil {
		return corpus.PageResult{}, errors.New("application is nil")
	}
	entries, err := a.Corpus.List(ctx)
	if err != nil {
		return corpus.PageResult{}, err
	}
	entries = corpus.FilterSource(entries, opts.Source)
	if opts.Sort == "" {
		opts.Sort = corpus.SortByScore
	}
	corpus.SortEntries(entries, opts.Sort)
	size := opts.Size
	if size == 0 {
		size = a.Config.PageSize
	}
	return corpus.Page(entries, opts.Page, size), nil
}

// Document returns one analyzed document.
func (a *Application) Document(ctx context.Context, source, name string) (*corpus.Document, error) {
	return a.Corpus.Document(ctx, source, name)
}

// Analyze scores ad-hoc text.
func (a *Application) Analyze(text string) analyzer.Result {
	return a.Engine.Analyze(text)
}

// WordReport counts word frequencies over the whole corpus.
func (a *Application) WordReport(ctx context.Context) (frequency.Report, error) {
	counter := a.Words.NewCounter()
	err := a.Corpus.Walk(ctx, func(doc corpus.Document) error {
		counter.Add(frequency.Doc{Text: doc.Text, Score: doc.Score})
		return nil
	})
	if err != nil {
		return frequency.Report{}, err
	}
	return counter.Report(), nil
}
