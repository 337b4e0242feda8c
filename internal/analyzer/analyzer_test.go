package analyzer_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/imola/internal/analyzer"
	"github.com/raysh454/imola/internal/roles"
	"github.com/raysh454/imola/internal/testutil"
)

func w(f float64) *float64 { return &f }

func mustDict(t *testing.T, spec roles.Spec) *roles.Dictionary {
	t.Helper()
	d, err := roles.New(spec)
	if err != nil {
		t.Fatalf("roles.New: %v", err)
	}
	return d
}

// smallDict mirrors the shape of the built-in dictionary with round numbers.
func smallDict(t *testing.T) *roles.Dictionary {
	return mustDict(t, roles.Spec{
		GroupBonus: 0.05,
		Roles: []roles.RoleSpec{
			{Name: "sprawca", Weight: w(0.20), Keywords: []string{"senna", "ayrton senna"}},
			{Name: "zdarzenie", Weight: w(0.30), Keywords: []string{"wypadek", "śmierć"}},
			{Name: "miejsce", Weight: w(0.15), Keywords: []string{"imola", "tamburello"}},
			{Name: "cel", Weight: w(0.05), Keywords: []string{"prix", "grand prix", "formuła", "km/h"}},
		},
		Synergy: []roles.SynergySpec{
			{Roles: []string{"sprawca", "zdarzenie"}, Bonus: 0.15},
		},
	})
}

func TestAnalyze_EmptyContent(t *testing.T) {
	t.Parallel()
	e := analyzer.New(roles.Default(), nil)

	res := e.Analyze("")
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if len(res.FoundRoles) != 0 {
		t.Errorf("found roles = %v, want empty", res.FoundRoles)
	}
	if res.Highlighted != "" {
		t.Errorf("highlighted = %q, want empty", res.Highlighted)
	}
	if len(res.Spans) != 0 {
		t.Errorf("spans = %v, want none", res.Spans)
	}
}

func TestAnalyze_NoMatchLeavesTextUntouched(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)
	content := "Zwykły tekst o pogodzie & <b>niczym</b> więcej."

	res := e.Analyze(content)
	if res.Highlighted != content {
		t.Errorf("highlighted = %q, want input unchanged", res.Highlighted)
	}
	if res.Score != 0 || len(res.Roles) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAnalyze_SynergyAdditivity(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("Senna miał wypadek.")
	if res.Score != 0.65 {
		t.Fatalf("score = %v, want 0.65 (breakdown %+v)", res.Score, res.Breakdown)
	}
	want := map[string][]string{"sprawca": {"Senna"}, "zdarzenie": {"wypadek"}}
	if !reflect.DeepEqual(res.FoundRoles, want) {
		t.Errorf("found roles = %v, want %v", res.FoundRoles, want)
	}
	if !reflect.DeepEqual(res.Roles, []string{"sprawca", "zdarzenie"}) {
		t.Errorf("roles = %v", res.Roles)
	}
	if res.Breakdown.Synergy != 0.15 {
		t.Errorf("synergy = %v, want 0.15", res.Breakdown.Synergy)
	}
}

func TestAnalyze_WholeWordOnly(t *testing.T) {
	t.Parallel()
	e := analyzer.New(roles.Default(), nil)

	res := e.Analyze("formułowy")
	if res.Active("cel") {
		t.Fatalf("formułowy must not match formuła: %v", res.FoundRoles)
	}
	if res.Highlighted != "formułowy" {
		t.Errorf("highlighted = %q", res.Highlighted)
	}

	res = e.Analyze("Sennameister and torus")
	if len(res.FoundRoles) != 0 {
		t.Errorf("matched inside longer words: %v", res.FoundRoles)
	}

	res = e.Analyze("(formuła)")
	if got := res.FoundRoles["cel"]; !reflect.DeepEqual(got, []string{"formuła"}) {
		t.Errorf("punctuation should be a boundary, got %v", got)
	}
}

func TestAnalyze_CaseInsensitivePreservesCasing(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("SENNA, Senna i senna.")
	if got := res.FoundRoles["sprawca"]; !reflect.DeepEqual(got, []string{"SENNA"}) {
		t.Errorf("found = %v, want first occurrence only", got)
	}
	for _, form := range []string{"SENNA", "Senna", "senna"} {
		span := `<mark class="hl-sprawca">` + form + `</mark>`
		if !strings.Contains(res.Highlighted, span) {
			t.Errorf("missing span %s in %q", span, res.Highlighted)
		}
	}
	if len(res.Spans) != 3 {
		t.Errorf("spans = %d, want 3", len(res.Spans))
	}
}

func TestAnalyze_PolishCaseFolding(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("ŚMIERĆ na torze")
	if got := res.FoundRoles["zdarzenie"]; !reflect.DeepEqual(got, []string{"ŚMIERĆ"}) {
		t.Errorf("found = %v", got)
	}
}

func TestAnalyze_LongestMatchPrecedence(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("grand prix")
	want := `<mark class="hl-cel">grand prix</mark>`
	if res.Highlighted != want {
		t.Fatalf("highlighted = %q, want %q", res.Highlighted, want)
	}
	if strings.Count(res.Highlighted, "<mark") != 1 {
		t.Errorf("double wrapped: %q", res.Highlighted)
	}
	if got := res.FoundRoles["cel"]; !reflect.DeepEqual(got, []string{"grand prix", "prix"}) {
		t.Errorf("found = %v", got)
	}
}

func TestAnalyze_ShorterKeywordOutsideLongerSpanIsWrapped(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("Ayrton Senna. Potem tylko Senna.")
	want := `<mark class="hl-sprawca">Ayrton Senna</mark>. Potem tylko <mark class="hl-sprawca">Senna</mark>.`
	if res.Highlighted != want {
		t.Errorf("highlighted = %q\nwant          %q", res.Highlighted, want)
	}
	if got := res.FoundRoles["sprawca"]; !reflect.DeepEqual(got, []string{"Ayrton Senna", "Senna"}) {
		t.Errorf("found = %v", got)
	}
}

func TestAnalyze_LiteralMultiCharKeywords(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze("Jechał 310 km/h, nie km/hour.")
	if strings.Count(res.Highlighted, "<mark") != 1 {
		t.Errorf("expected exactly one span, got %q", res.Highlighted)
	}
	if !strings.Contains(res.Highlighted, `<mark class="hl-cel">km/h</mark>,`) {
		t.Errorf("km/h not highlighted: %q", res.Highlighted)
	}
}

func TestAnalyze_CrossRoleOverlapNotRewrapped(t *testing.T) {
	t.Parallel()
	d := mustDict(t, roles.Spec{
		Roles: []roles.RoleSpec{
			{Name: "miejsce", Weight: w(0.1), Keywords: []string{"san marino grand prix"}},
			{Name: "cel", Weight: w(0.1), Keywords: []string{"grand prix"}},
		},
	})
	e := analyzer.New(d, nil)

	res := e.Analyze("San Marino Grand Prix 1994")
	if strings.Count(res.Highlighted, "<mark") != 1 {
		t.Errorf("overlapping span re-wrapped: %q", res.Highlighted)
	}
	if !res.Active("cel") {
		t.Errorf("cel should still be active: %v", res.FoundRoles)
	}
}

func TestAnalyze_GroupBonus(t *testing.T) {
	t.Parallel()
	d := mustDict(t, roles.Spec{
		GroupBonus: 0.05,
		Roles: []roles.RoleSpec{
			{Name: "a", Weight: w(0.1), Keywords: []string{"alfa"}},
			{Name: "b", Weight: w(0.1), Keywords: []string{"bravo"}},
			{Name: "c", Weight: w(0.1), Keywords: []string{"charlie"}},
			{Name: "d", Weight: w(0.1), Keywords: []string{"delta"}},
		},
	})
	e := analyzer.New(d, nil)

	tests := []struct {
		content string
		group   float64
		score   float64
	}{
		{"alfa bravo", 0, 0.2},
		{"alfa bravo charlie", 0.05, 0.35},
		{"alfa bravo charlie delta", 0.10, 0.5},
	}
	for _, tc := range tests {
		res := e.Analyze(tc.content)
		if diff := res.Breakdown.Group - tc.group; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%q: group = %v, want %v", tc.content, res.Breakdown.Group, tc.group)
		}
		if res.Score != tc.score {
			t.Errorf("%q: score = %v, want %v", tc.content, res.Score, tc.score)
		}
	}
}

func TestAnalyze_ClampsToOne(t *testing.T) {
	t.Parallel()
	d := mustDict(t, roles.Spec{
		Roles: []roles.RoleSpec{
			{Name: "a", Weight: w(0.6), Keywords: []string{"alfa"}},
			{Name: "b", Weight: w(0.7), Keywords: []string{"bravo"}},
		},
	})
	e := analyzer.New(d, nil)

	res := e.Analyze("alfa bravo")
	if res.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", res.Score)
	}
	if res.Breakdown.Raw <= 1.0 {
		t.Errorf("raw = %v, expected above 1", res.Breakdown.Raw)
	}
}

func TestAnalyze_ScoreBoundsAndIdempotence(t *testing.T) {
	t.Parallel()
	e := analyzer.New(roles.Default(), testutil.NewDummyLogger())

	inputs := []string{
		"",
		" ",
		"Ayrton Senna zginął 1 maja 1994 roku na torze Imola w zakręcie Tamburello.",
		"Wypadek bolidu Williams FW16: złamana kolumna kierownicza, 310 km/h, Grand Prix San Marino, Formuła 1.",
		strings.Repeat("senna wypadek imola bolid kierownica formuła ", 50),
		"\xff\xfe broken bytes senna",
		"Przepis na sernik.",
	}
	for _, in := range inputs {
		a := e.Analyze(in)
		b := e.Analyze(in)
		if a.Score < 0 || a.Score > 1 {
			t.Errorf("score %v out of bounds for %q", a.Score, in)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("analysis not idempotent for %q", in)
		}
	}
}

func TestAnalyze_FullEventScoresHigh(t *testing.T) {
	t.Parallel()
	e := analyzer.New(roles.Default(), nil)

	res := e.Analyze("Ayrton Senna zginął w wypadku? Nie: wypadek na torze Imola, bolid uderzył w ścianę przy 310 km/h. Kolumna kierownicza pękła.")
	if res.Score != 1.0 {
		t.Errorf("score = %v, want clamp at 1.0 (breakdown %+v)", res.Score, res.Breakdown)
	}
	for _, role := range []string{"sprawca", "zdarzenie", "obiekt", "narzedzie", "miejsce", "cel"} {
		if !res.Active(role) {
			t.Errorf("role %s not active: %v", role, res.FoundRoles)
		}
	}
}

func TestResult_HTMLEscapesText(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)

	res := e.Analyze(`<script>senna</script> & imola`)
	got := string(res.HTML())
	want := `&lt;script&gt;<mark class="hl-sprawca">senna</mark>&lt;/script&gt; &amp; <mark class="hl-miejsce">imola</mark>`
	if got != want {
		t.Errorf("HTML() = %q\nwant     %q", got, want)
	}
	if !strings.Contains(res.Highlighted, "<script>") {
		t.Errorf("Highlighted should keep raw text: %q", res.Highlighted)
	}
}

func TestAnalyze_SpansPointIntoContent(t *testing.T) {
	t.Parallel()
	e := analyzer.New(smallDict(t), nil)
	content := "Imola, Tamburello: Senna."

	res := e.Analyze(content)
	if len(res.Spans) != 3 {
		t.Fatalf("spans = %+v", res.Spans)
	}
	prev := -1
	for _, s := range res.Spans {
		if s.Start < prev {
			t.Errorf("spans not sorted: %+v", res.Spans)
		}
		prev = s.End
		if !strings.EqualFold(content[s.Start:s.End], s.Keyword) {
			t.Errorf("span %+v does not cover keyword (%q)", s, content[s.Start:s.End])
		}
	}
}

func TestAnalyze_RoundsHalfToEven(t *testing.T) {
	t.Parallel()
	d := mustDict(t, roles.Spec{
		Roles: []roles.RoleSpec{
			{Name: "a", Weight: w(0.125), Keywords: []string{"alfa"}},
			{Name: "b", Weight: w(0.25), Keywords: []string{"bravo"}},
		},
	})
	e := analyzer.New(d, nil)

	if got := e.Analyze("alfa").Score; got != 0.12 {
		t.Errorf("0.125 scored %v, want 0.12", got)
	}
	if got := e.Analyze("alfa bravo").Score; got != 0.38 {
		t.Errorf("0.375 scored %v, want 0.38", got)
	}
}

func TestAnalyze_RepetitiveInputScalesLinearly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	e := analyzer.New(nil, nil)

	measure := func(n int) time.Duration {
		content := strings.Repeat("senna wypadek ", n)
		best := time.Duration(1<<63 - 1)
		for i := 0; i < 3; i++ {
			start := time.Now()
			res := e.Analyze(content)
			if d := time.Since(start); d < best {
				best = d
			}
			if len(res.Spans) != 2*n {
				t.Fatalf("n=%d: %d spans, want %d", n, len(res.Spans), 2*n)
			}
		}
		return best
	}

	small, large := measure(10000), measure(40000)
	// Four times the input; a quadratic claim pass would cost about 16x.
	if large > 10*small+50*time.Millisecond {
		t.Errorf("40k repetitions took %v, 10k took %v", large, small)
	}
}
