package analyzer

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/raysh454/imola/internal/roles"
)

// keywordMatcher finds whole-word, case-insensitive occurrences of one
// keyword. The keyword is matched literally, so spaces and punctuation
// inside it ("grand prix", "km/h") are part of the pattern; word
// boundaries are only checked at its outer edges.
type keywordMatcher struct {
	keyword string
	key     string
	re      *regexp.Regexp
}

func newKeywordMatcher(keyword string) keywordMatcher {
	return keywordMatcher{
		keyword: keyword,
		key:     roles.FoldKey(keyword),
		re:      regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword)),
	}
}

// find returns the [start, end) byte offsets of every whole-word
// occurrence in s. Candidates rejected for a boundary only advance the
// search by one rune, so an overlapping valid occurrence is not skipped.
func (m keywordMatcher) find(s string) [][2]int {
	var out [][2]int
	pos := 0
	for pos <= len(s) {
		loc := m.re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			break
		}
		if atWordBoundary(s, start, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + size
	}
	return out
}

func atWordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// roleMatcher holds a role's keywords ordered longest first.
type roleMatcher struct {
	name     string
	weight   float64
	keywords []keywordMatcher
}

func newRoleMatcher(r roles.Role) roleMatcher {
	rm := roleMatcher{name: r.Name, weight: r.Weight}
	for _, kw := range r.Keywords {
		rm.keywords = append(rm.keywords, newKeywordMatcher(kw))
	}
	sort.SliceStable(rm.keywords, func(i, j int) bool {
		return utf8.RuneCountInString(rm.keywords[i].keyword) > utf8.RuneCountInString(rm.keywords[j].keyword)
	})
	return rm
}

// claims holds the spans already highlighted in one analysis, sorted by
// Start and pairwise disjoint.
type claims []Span

// claim merges occ, ascending and disjoint as returned by find, into c in
// one pass. Occurrences that overlap an existing claim are dropped.
func (c claims) claim(occ [][2]int, role, keyword string) claims {
	if len(occ) == 0 {
		return c
	}
	out := make(claims, 0, len(c)+len(occ))
	i := 0
	for _, o := range occ {
		for i < len(c) && c[i].End <= o[0] {
			out = append(out, c[i])
			i++
		}
		if i < len(c) && c[i].Start < o[1] {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End > o[0] {
			continue
		}
		out = append(out, Span{Start: o[0], End: o[1], Role: role, Keyword: keyword})
	}
	return append(out, c[i:]...)
}
