package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the ordering of a listing.
type SortKey string

const (
	SortByScore  SortKey = "score"
	SortByName   SortKey = "name"
	SortBySource SortKey = "source"
)

// ParseSortKey accepts "score", "name" or "source"; empty means score.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByScore:
		return SortByScore, nil
	case SortByName:
		return SortByName, nil
	case SortBySource:
		return SortBySource, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// SortEntries orders entries in place. Score sorts descending; every key
// falls back to source then name so the order is total.
func SortEntries(entries []Entry, by SortKey) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch by {
		case SortByScore:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		case SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Name < b.Name
	})
}

// FilterSource keeps the entries of one source; an empty label keeps all.
func FilterSource(entries []Entry, label string) []Entry {
	if label == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Source == label {
			out = append(out, e)
		}
	}
	return out
}

// PageResult is one page of a listing.
type PageResult struct {
	Items []Entry `json:"items"`
	Page  int     `json:"page"`
	Size  int     `json:"size"`
	Total int     `json:"total"`
	Pages int     `json:"pages"`
}

// Page returns the 1-based page of entries. Out-of-range pages are clamped
// to the nearest valid page; size <= 0 returns everything on one page.
func Page(entries []Entry, page, size int) PageResult {
	total := len(entries)
	if size <= 0 {
		size = total
	}
	pages := 1
	if size > 0 && total > 0 {
		pages = (total + size - 1) / size
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	items := []Entry{}
	if start < end {
		items = entries[start:end]
	}
	return PageResult{Items: items, Page: page, Size: size, Total: total, Pages: pages}
}
