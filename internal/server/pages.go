package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/app"
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/frequency"
	"github.com/raysh454/imola/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	byName map[string]*template.Template
}

var funcs = template.FuncMap{
	"markClass": analyzer.MarkClass,
	"pct":       func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"score":     func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"docURL": func(source, name string) string {
		parts := strings.Split(name, "/")
		for i, p := range parts {
			parts[i] = url.PathEscape(p)
		}
		return "/doc/" + url.PathEscape(source) + "/" + strings.Join(parts, "/")
	},
	"thematic": func(f float64) bool { return f >= 0.5 },
	"join":     strings.Join,
	"add":      func(a, b int) int { return a + b },
}

func parsePages() (*pages, error) {
	p := &pages{byName: map[string]*template.Template{}}
	for _, name := range []string{"index.html", "doc.html", "dictionary.html", "words.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

// render executes a page into a buffer first so that a template error
// turns into a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.pages.byName[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("rendering page", logging.Field{Key: "page", Value: page}, logging.Field{Key: "request_id", Value: requestID(r)}, logging.Field{Key: "error", Value: err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "index.html", indexPage{Title: http.StatusText(status), Error: msg})
}

type indexPage struct {
	Title   string
	Error   string
	Sources []string
	Opts    app.ListOptions
	Page    corpus.PageResult
	PrevURL string
	NextURL string
}

type docPage struct {
	Title    string
	Doc      *corpus.Document
	Body     template.HTML
	Roles    []roleHit
	Analysis analyzer.Breakdown
}

type roleHit struct {
	Name     string
	Keywords []string
	Weight   float64
}

type dictionaryPage struct {
	Title string
	Dict  DictionaryResponse
}

type wordsPage struct {
	Title  string
	Report frequency.Report
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, err := s.app.List(r.Context(), opts)
	if err != nil {
		s.logger.Warn("listing documents", logging.Field{Key: "error", Value: err.Error()})
		s.renderError(w, r, statusFor(err), err.Error())
		return
	}

	data := indexPage{
		Title:   "Dokumenty",
		Sources: s.app.Corpus.Sources(),
		Opts:    opts,
		Page:    page,
	}
	if page.Page > 1 {
		data.PrevURL = pageURL(r, page.Page-1)
	}
	if page.Page < page.Pages {
		data.NextURL = pageURL(r, page.Page+1)
	}
	s.render(w, r, http.StatusOK, "index.html", data)
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", fmt.Sprint(page))
	return "/?" + q.Encode()
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	name := chi.URLParam(r, "*")

	doc, err := s.app.Document(r.Context(), source, name)
	if err != nil {
		s.renderError(w, r, statusFor(err), err.Error())
		return
	}

	var hits []roleHit
	for _, role := range doc.Result.Roles {
		hits = append(hits, roleHit{
			Name:     role,
			Keywords: doc.Result.FoundRoles[role],
			Weight:   s.app.Dictionary.Weight(role),
		})
	}
	s.render(w, r, http.StatusOK, "doc.html", docPage{
		Title:    doc.Source + "/" + doc.Name,
		Doc:      doc,
		Body:     doc.Result.HTML(),
		Roles:    hits,
		Analysis: doc.Result.Breakdown,
	})
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dictionary.html", dictionaryPage{
		Title: "Słownik",
		Dict:  dictionaryResponse(s.app.Dictionary),
	})
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	rep, err := s.app.WordReport(r.Context())
	if err != nil {
		s.logger.Warn("counting words", logging.Field{Key: "error", Value: err.Error()})
		s.renderError(w, r, statusFor(err), err.Error())
		return
	}
	s.render(w, r, http.StatusOK, "words.html", wordsPage{Title: "Słowa", Report: rep})
}
