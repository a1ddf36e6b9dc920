// Package qa validates lesson scripts before the expensive render step.
//
// Validation is a fixed, ordered table of independent checks. Each check is a
// pure function over the parsed document and reports exactly one result with
// one of three severities. Any fail-severity result blocks the render;
// warnings are surfaced but never block.
package qa

import "github.com/lessonforge/lessonforge/internal/script"

// Status is the severity of a single check result.
type Status int

const (
	// Pass means no action needed.
	Pass Status = iota
	// Warn means render allowed but flagged for review.
	Warn
	// Fail blocks the render.
	Fail
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Status  Status
	Message string
}

// CheckFunc inspects a document and returns one result. Check functions must
// not mutate the document.
type CheckFunc func(*script.Document) Result

// Check pairs a human-readable name with its check function.
type Check struct {
	Name string
	Fn   CheckFunc
}

// Checks is the full validation table in reporting order. Checks are
// independent; order affects reporting only, never outcomes.
var Checks = []Check{
	{"Scene structure (title → content → outro)", checkSceneStructure},
	{"Scene count (3-6)", checkSceneCount},
	{"Duration < 3 min", checkDuration},
	{"Every content scene has layout", checkContentSceneLayouts},
	{"Visual elements (min 2/scene, diverse)", checkVisualElements},
	{"Emphasis element per scene", checkEmphasisElements},
	{"All visuals have trigger words", checkVisualTriggers},
	{"Section labels on all scenes", checkSectionLabels},
	{"Icons are valid", checkIcons},
	{"Colors are valid hex", checkColors},
	{"Visual density (words/visual ratio)", checkVisualDensity},
	{"Layout diversity", checkLayoutDiversity},
	{"Recall question in outro", checkRecallQuestion},
	{"Practical example present", checkPracticalExample},
	{"Key phrase included", checkKeyPhrase},
}

// NamedResult is one row of a report.
type NamedResult struct {
	Name   string
	Result Result
}

// Report aggregates every check result for one document.
type Report struct {
	Results []NamedResult
	Passes  int
	Warns   int
	Fails   int
}

// Run executes the full check table against the document.
func Run(doc *script.Document) *Report {
	r := &Report{Results: make([]NamedResult, 0, len(Checks))}
	for _, c := range Checks {
		res := c.Fn(doc)
		r.Results = append(r.Results, NamedResult{Name: c.Name, Result: res})
		switch res.Status {
		case Pass:
			r.Passes++
		case Warn:
			r.Warns++
		case Fail:
			r.Fails++
		}
	}
	return r
}

// RenderAllowed is the render gate: true iff no check failed.
func (r *Report) RenderAllowed() bool {
	return r.Fails == 0
}
