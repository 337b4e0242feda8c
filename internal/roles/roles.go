// Package roles holds the keyword dictionary that drives relevance scoring:
// the roles, their keywords, per-role weights, pairwise synergy bonuses and
// the group bonus. A Dictionary is validated once when it is built and is
// read-only afterwards, so it can be shared freely between goroutines.
package roles

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidConfig is matched (via errors.Is) by every validation failure.
var ErrInvalidConfig = errors.New("invalid role configuration")

// ValidationError lists every problem found in a dictionary definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Spec is the declarative form of a dictionary, as written in YAML.
type Spec struct {
	GroupBonus float64            `yaml:"group_bonus" json:"group_bonus"`
	Roles      []RoleSpec         `yaml:"roles" json:"roles"`
	Weights    map[string]float64 `yaml:"weights,omitempty" json:"weights,omitempty"`
	Synergy    []SynergySpec      `yaml:"synergy,omitempty" json:"synergy,omitempty"`
}

// RoleSpec declares one role. Weight may also be given in Spec.Weights,
// which takes precedence.
type RoleSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Weight   *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// SynergySpec declares a bonus for two roles being active together.
type SynergySpec struct {
	Roles []string `yaml:"roles" json:"roles"`
	Bonus float64  `yaml:"bonus" json:"bonus"`
}

// Role is a validated role with its effective weight.
type Role struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Weight   float64  `json:"weight"`
}

// Pair is an unordered pair of role names, stored with A < B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair returns the canonical pair for two role names.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// SynergyEntry is one synergy bonus.
type SynergyEntry struct {
	Pair  Pair    `json:"pair"`
	Bonus float64 `json:"bonus"`
}

// Dictionary is an immutable, validated role configuration.
type Dictionary struct {
	roles      []Role
	index      map[string]int
	synergy    map[Pair]float64
	pairs      []SynergyEntry
	groupBonus float64
	warnings   []string
}

// FoldKey returns the case-insensitive identity of a keyword.
func FoldKey(s string) string {
	return cases.Fold().String(s)
}

// New validates spec and builds a Dictionary from it.
func New(spec Spec) (*Dictionary, error) {
	var problems, warnings []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(spec.Roles) == 0 {
		addf("no roles defined")
	}
	if !validAmount(spec.GroupBonus) {
		addf("group_bonus must be a finite number >= 0, got %v", spec.GroupBonus)
	}

	d := &Dictionary{
		index:      make(map[string]int, len(spec.Roles)),
		synergy:    make(map[Pair]float64, len(spec.Synergy)),
		groupBonus: spec.GroupBonus,
	}

	for i, rs := range spec.Roles {
		name := strings.TrimSpace(rs.Name)
		if name == "" {
			addf("role #%d has no name", i+1)
			continue
		}
		if _, dup := d.index[name]; dup {
			addf("role %q declared more than once", name)
			continue
		}
		if len(rs.Keywords) == 0 {
			addf("role %q has no keywords", name)
		}

		seen := make(map[string]string, len(rs.Keywords))
		keywords := make([]string, 0, len(rs.Keywords))
		for _, kw := range rs.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				addf("role %q has an empty keyword", name)
				continue
			}
			key := FoldKey(kw)
			if prev, ok := seen[key]; ok {
				addf("role %q: keyword %q duplicates %q (case-insensitive)", name, kw, prev)
				continue
			}
			seen[key] = kw
			keywords = append(keywords, kw)
		}

		role := Role{Name: name, Keywords: keywords}
		weight, hasWeight := spec.Weights[name]
		if !hasWeight && rs.Weight != nil {
			weight, hasWeight = *rs.Weight, true
		}
		switch {
		case !hasWeight:
			warnings = append(warnings, fmt.Sprintf("role %q has no weight; treated as 0", name))
		case !validAmount(weight):
			addf("role %q: weight must be a finite number >= 0, got %v", name, weight)
		default:
			role.Weight = weight
		}

		d.index[name] = len(d.roles)
		d.roles = append(d.roles, role)
	}

	weightNames := make([]string, 0, len(spec.Weights))
	for name := range spec.Weights {
		weightNames = append(weightNames, name)
	}
	sort.Strings(weightNames)
	for _, name := range weightNames {
		if _, ok := d.index[name]; !ok {
			addf("weights: unknown role %q", name)
		}
	}

	for i, ss := range spec.Synergy {
		if len(ss.Roles) != 2 {
			addf("synergy #%d: expected 2 roles, got %d", i+1, len(ss.Roles))
			continue
		}
		a, b := strings.TrimSpace(ss.Roles[0]), strings.TrimSpace(ss.Roles[1])
		ok := true
		for _, name := range []string{a, b} {
			if _, known := d.index[name]; !known {
				addf("synergy #%d: unknown role %q", i+1, name)
				ok = false
			}
		}
		if a == b {
			addf("synergy #%d: roles must be distinct, got %q twice", i+1, a)
			ok = false
		}
		if !validAmount(ss.Bonus) {
			addf("synergy #%d: bonus must be a finite number >= 0, got %v", i+1, ss.Bonus)
			ok = false
		}
		if !ok {
			continue
		}
		p := NewPair(a, b)
		if _, dup := d.synergy[p]; dup {
			addf("synergy for %s/%s declared more than once", p.A, p.B)
			continue
		}
		d.synergy[p] = ss.Bonus
		d.pairs = append(d.pairs, SynergyEntry{Pair: p, Bonus: ss.Bonus})
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	sort.SliceStable(d.pairs, func(i, j int) bool {
		if d.pairs[i].Pair.A != d.pairs[j].Pair.A {
			return d.pairs[i].Pair.A < d.pairs[j].Pair.A
		}
		return d.pairs[i].Pair.B < d.pairs[j].Pair.B
	})
	d.warnings = warnings
	return d, nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Parse decodes a YAML dictionary and validates it. Unknown fields are
// rejected so that typos do not silently drop configuration.
func Parse(data []byte) (*Dictionary, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decoding yaml: %v", ErrInvalidConfig, err)
	}
	return New(spec)
}

// Load reads and parses a YAML dictionary file.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary %s: %w", path, err)
	}
	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default returns the built-in dictionary. It panics if the embedded
// definition does not validate.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		d, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("roles: built-in dictionary: %v", err))
		}
		defaultDict = d
	})
	return defaultDict
}

// DefaultYAML returns a copy of the built-in dictionary source.
func DefaultYAML() []byte {
	return bytes.Clone(defaultYAML)
}

// Roles returns the roles in declaration order.
func (d *Dictionary) Roles() []Role {
	out := make([]Role, len(d.roles))
	for i, r := range d.roles {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Names returns the role names in declaration order.
func (d *Dictionary) Names() []string {
	out := make([]string, len(d.roles))
	for i, r := range d.roles {
		out[i] = r.Name
	}
	return out
}

// Role looks up a role by name.
func (d *Dictionary) Role(name string) (Role, bool) {
	i, ok := d.index[name]
	if !ok {
		return Role{}, false
	}
	r := d.roles[i]
	r.Keywords = append([]string(nil), r.Keywords...)
	return r, true
}

// Keywords returns the keywords of a role in declaration order.
func (d *Dictionary) Keywords(name string) []string {
	r, _ := d.Role(name)
	return r.Keywords
}

// Weight returns the weight of a role; 0 for unknown roles.
func (d *Dictionary) Weight(name string) float64 {
	if i, ok := d.index[name]; ok {
		return d.roles[i].Weight
	}
	return 0
}

// Synergy returns the bonus for a and b being active together. The lookup
// is symmetric; undefined pairs yield 0.
func (d *Dictionary) Synergy(a, b string) float64 {
	return d.synergy[NewPair(a, b)]
}

// SynergyPairs returns every synergy bonus sorted by pair.
func (d *Dictionary) SynergyPairs() []SynergyEntry {
	return append([]SynergyEntry(nil), d.pairs...)
}

// GroupBonus returns the bonus added per active role beyond two.
func (d *Dictionary) GroupBonus() float64 {
	return d.groupBonus
}

// MaxScore is the raw score when every role is active. Scores are clamped
// to 1.0 so a value above 1 is informational only.
func (d *Dictionary) MaxScore() float64 {
	total := 0.0
	for _, r := range d.roles {
		total += r.Weight
	}
	for _, p := range d.pairs {
		total += p.Bonus
	}
	if n := len(d.roles); n > 2 {
		total += float64(n-2) * d.groupBonus
	}
	return total
}

// Warnings returns non-fatal findings such as roles without a weight.
func (d *Dictionary) Warnings() []string {
	return append([]string(nil), d.warnings...)
}
