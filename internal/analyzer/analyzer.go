// Package analyzer scores text for relevance against a roles.Dictionary and
// produces a highlighted copy of it.
//
// For every role, in dictionary order, keywords are tried longest first.
// Presence is judged on the original text; highlighting is position
// tracked, so an occurrence that overlaps a span claimed earlier (a longer
// keyword, or an earlier role) is never wrapped a second time.
package analyzer

import (
	"math"

	"github.com/raysh454/imola/internal/logging"
	"github.com/raysh454/imola/internal/roles"
)

// Analyzer scores one document.
type Analyzer interface {
	Analyze(content string) Result
}

// Engine is the dictionary-driven Analyzer. It is immutable after New and
// safe for concurrent use.
type Engine struct {
	dict  *roles.Dictionary
	roles []roleMatcher
}

var _ Analyzer = (*Engine)(nil)

// New compiles the keyword matchers for dict. A nil dict selects the
// built-in dictionary; a nil logger discards output.
func New(dict *roles.Dictionary, logger logging.Logger) *Engine {
	if dict == nil {
		dict = roles.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := &Engine{dict: dict}
	keywords := 0
	for _, r := range dict.Roles() {
		rm := newRoleMatcher(r)
		keywords += len(rm.keywords)
		e.roles = append(e.roles, rm)
	}

	logger.With(logging.Field{Key: "component", Value: "analyzer"}).Debug("compiled keyword matchers",
		logging.Field{Key: "roles", Value: len(e.roles)},
		logging.Field{Key: "keywords", Value: keywords})
	return e
}

// Dictionary returns the dictionary the engine was built from.
func (e *Engine) Dictionary() *roles.Dictionary {
	return e.dict
}

// Analyze scores content. It never fails: empty content yields a zero
// score, no roles and an empty highlighted text.
func (e *Engine) Analyze(content string) Result {
	res := Result{
		FoundRoles:  map[string][]string{},
		Roles:       []string{},
		Spans:       []Span{},
		Highlighted: content,
		content:     content,
	}
	if content == "" {
		return res
	}

	var taken claims
	for _, rm := range e.roles {
		var matched []string
		seen := make(map[string]bool, len(rm.keywords))
		for _, km := range rm.keywords {
			occ := km.find(content)
			if len(occ) == 0 || seen[km.key] {
				continue
			}
			seen[km.key] = true
			matched = append(matched, content[occ[0][0]:occ[0][1]])

			taken = taken.claim(occ, rm.name, km.keyword)
		}
		if len(matched) > 0 {
			res.FoundRoles[rm.name] = matched
			res.Roles = append(res.Roles, rm.name)
		}
	}

	res.Spans = append(res.Spans, taken...)
	res.Highlighted = render(content, res.Spans, identity)
	res.Breakdown = e.score(res.Roles)
	res.Score = clampScore(res.Breakdown.Raw)
	return res
}

// score sums the weights of the active roles, the synergy of every
// distinct active pair, and one group bonus per active role beyond two.
func (e *Engine) score(active []string) Breakdown {
	var b Breakdown
	for _, name := range active {
		b.Base += e.dict.Weight(name)
	}
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			b.Synergy += e.dict.Synergy(active[i], active[j])
		}
	}
	if n := len(active); n >= 3 {
		b.Group = float64(n-2) * e.dict.GroupBonus()
	}
	b.Raw = b.Base + b.Synergy + b.Group
	return b
}

// clampScore rounds to two decimals, halves to even, and clamps to [0, 1].
func clampScore(raw float64) float64 {
	s := math.RoundToEven(raw*100) / 100
	if s > 1.0 {
		return 1.0
	}
	if s < 0 {
		return 0
	}
	return s
}
