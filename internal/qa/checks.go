package qa

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lessonforge/lessonforge/internal/script"
)

// Tunable thresholds for the check table.
const (
	minScenes          = 3
	maxScenes          = 6
	minNarrationChars  = 10
	speakingRateWPS    = 2.5 // estimated words per second of narration
	maxDurationSeconds = 180
	minRichVisuals     = 2
	maxWordsPerVisual  = 30
)

// joinIssues formats a per-scene issue list under a summary line.
func joinIssues(summary string, issues []string) string {
	return summary + ":\n    " + strings.Join(issues, "\n    ")
}

func checkSceneStructure(doc *script.Document) Result {
	if len(doc.Scenes) == 0 {
		return Result{Fail, "No scenes found"}
	}
	var issues []string

	first := &doc.Scenes[0]
	last := &doc.Scenes[len(doc.Scenes)-1]
	if !script.IsTitleType(first.Type) {
		issues = append(issues, fmt.Sprintf("First scene should be a title type, got %q", first.Type))
	}
	if !script.IsOutroType(last.Type) {
		issues = append(issues, fmt.Sprintf("Last scene should be an outro type, got %q", last.Type))
	}

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if len(strings.TrimSpace(s.Narration)) < minNarrationChars {
			issues = append(issues, fmt.Sprintf("Scene %d: missing or too-short narration", i+1))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Structure issues", issues)}
	}
	return Result{Pass, "Correct structure: title → content → outro, all narrated"}
}

func checkSceneCount(doc *script.Document) Result {
	count := len(doc.Scenes)
	if count < minScenes {
		return Result{Fail, fmt.Sprintf("Only %d scenes. Minimum: title + content + outro = %d", count, minScenes)}
	}
	if count > maxScenes {
		return Result{Warn, fmt.Sprintf("%d scenes — may run long. Consider splitting.", count)}
	}
	return Result{Pass, fmt.Sprintf("%d scenes — good structure", count)}
}

func checkDuration(doc *script.Document) Result {
	totalWords := 0
	for i := range doc.Scenes {
		if n := doc.Scenes[i].Narration; n != "" {
			totalWords += len(strings.Fields(n))
		}
	}
	estimated := float64(totalWords) / speakingRateWPS

	if estimated > maxDurationSeconds {
		return Result{Fail, fmt.Sprintf("Estimated %.0fs (%d words) exceeds the %ds limit", estimated, totalWords, maxDurationSeconds)}
	}
	return Result{Pass, fmt.Sprintf("Estimated %.0fs (%d words) — under the %ds limit", estimated, totalWords, maxDurationSeconds)}
}

func checkContentSceneLayouts(doc *script.Document) Result {
	var issues []string
	valid := strings.Join(script.KnownLayouts, ", ")

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if !s.IsContent() {
			continue
		}
		switch {
		case s.Layout == "":
			issues = append(issues, fmt.Sprintf("Scene %d (%q): no layout defined. Every content scene must use a layout (%s)", i+1, s.Name(), valid))
		case !script.ValidLayout(s.Layout):
			issues = append(issues, fmt.Sprintf("Scene %d: unknown layout %q. Valid: %s", i+1, s.Layout, valid))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Content scenes without proper layout", issues)}
	}
	return Result{Pass, "All content scenes have a valid layout defined"}
}

func checkVisualElements(doc *script.Document) Result {
	var issues []string
	contentScenes := 0

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if !s.IsContent() {
			continue
		}
		contentScenes++

		rich := 0
		types := map[string]bool{}
		for _, v := range s.Visuals {
			if script.RichVisual(v.Type) {
				rich++
				types[v.Type] = true
			}
		}

		if rich < minRichVisuals {
			issues = append(issues, fmt.Sprintf("Scene %d (%q): only %d visual element(s). Minimum %d required.", i+1, s.Name(), rich, minRichVisuals))
		} else if len(types) < 2 {
			issues = append(issues, fmt.Sprintf("Scene %d: all visuals share one type. Mix types for visual variety.", i+1))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Visual element issues", issues)}
	}
	return Result{Pass, fmt.Sprintf("All %d content scenes have %d+ visuals with type diversity", contentScenes, minRichVisuals)}
}

func checkEmphasisElements(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if !s.IsContent() {
			continue
		}
		hasEmphasis := false
		for _, v := range s.Visuals {
			if script.EmphasisVisual(v.Type) {
				hasEmphasis = true
				break
			}
		}
		if !hasEmphasis {
			issues = append(issues, fmt.Sprintf("Scene %d (%q): no callout, highlight-box, or quote.", i+1, s.Name()))
		}
	}

	if len(issues) > 0 {
		return Result{Warn, joinIssues("Scenes missing emphasis elements (callout/highlight-box/quote)", issues)}
	}
	return Result{Pass, "All content scenes have at least one emphasis element"}
}

func checkVisualTriggers(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if len(s.Visuals) == 0 {
			continue
		}
		var missing []string
		for _, v := range s.Visuals {
			if v.Trigger == "" {
				missing = append(missing, v.Type)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("Scene %d: %d visual(s) missing a trigger (%s). Audio sync won't work.", i+1, len(missing), strings.Join(missing, ", ")))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Visuals without trigger words (breaks audio-visual sync)", issues)}
	}
	return Result{Pass, "All visuals have trigger words for audio-visual sync"}
}

func checkSectionLabels(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if s.SectionLabel == "" {
			issues = append(issues, fmt.Sprintf("Scene %d (%q): missing sectionLabel", i+1, s.Name()))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Scenes without sectionLabel (required for the top bar)", issues)}
	}
	return Result{Pass, "All scenes have sectionLabel defined"}
}

func checkIcons(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		for _, v := range doc.Scenes[i].Visuals {
			if v.Icon != "" && !script.KnownIcon(v.Icon) {
				issues = append(issues, fmt.Sprintf("Scene %d: unknown icon %q on %s. Known: %s", i+1, v.Icon, v.Type, strings.Join(script.KnownIcons, ", ")))
			}
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Unknown icons (will render blank)", issues)}
	}
	return Result{Pass, "All icons are valid"}
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func checkColors(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		for _, v := range doc.Scenes[i].Visuals {
			if v.Color != "" && !hexColorPattern.MatchString(v.Color) {
				issues = append(issues, fmt.Sprintf("Scene %d: invalid color %q on %s. Must be #RRGGBB hex.", i+1, v.Color, v.Type))
			}
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Invalid color values", issues)}
	}
	return Result{Pass, "All colors are valid hex"}
}

func checkVisualDensity(doc *script.Document) Result {
	var issues []string

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if !s.IsContent() {
			continue
		}
		visualCount := len(s.Visuals)
		if visualCount == 0 {
			// The visual-elements check covers scenes with no visuals.
			continue
		}
		wordCount := len(strings.Fields(s.Narration))
		ratio := int(math.Round(float64(wordCount) / float64(visualCount)))

		if ratio > maxWordsPerVisual {
			issues = append(issues, fmt.Sprintf("Scene %d (%q): %d words / %d visuals = %d words/visual. Add more visuals or shorten narration.", i+1, s.Name(), wordCount, visualCount, ratio))
		}
	}

	if len(issues) > 0 {
		return Result{Fail, joinIssues("Low visual density (too much narration per visual)", issues)}
	}
	return Result{Pass, "Visual density OK — enough visuals to cover narration"}
}

func checkLayoutDiversity(doc *script.Document) Result {
	layouts := map[string]bool{}
	for i := range doc.Scenes {
		if l := doc.Scenes[i].Layout; l != "" {
			layouts[l] = true
		}
	}
	contentScenes := len(doc.ContentScenes())

	if contentScenes >= 2 && len(layouts) < 2 {
		return Result{Warn, fmt.Sprintf("Only %d layout type(s) used across %d content scenes. Use different layouts for visual variety.", len(layouts), contentScenes)}
	}
	return Result{Pass, fmt.Sprintf("%d different layout(s) across %d content scene(s) — good variety", len(layouts), contentScenes)}
}

// recallCues are the phrases that count as a recall prompt in the outro.
var recallCues = []string{"?", "quick check", "pause", "the answer is"}

func checkRecallQuestion(doc *script.Document) Result {
	if len(doc.Scenes) == 0 {
		return Result{Fail, "No scenes found"}
	}
	last := &doc.Scenes[len(doc.Scenes)-1]
	narration := strings.ToLower(last.Narration)

	for _, cue := range recallCues {
		if strings.Contains(narration, cue) {
			return Result{Pass, "Recall question present in last scene"}
		}
	}
	return Result{Fail, "Last scene missing recall question. Must include ? or 'quick check' or 'the answer is'."}
}

var (
	examplePhrases = []string{"example", "for instance", "imagine", "let's say", "here's how"}
	dollarPattern  = regexp.MustCompile(`\$\d+`)
	percentPattern = regexp.MustCompile(`\d+%`)
)

func checkPracticalExample(doc *script.Document) Result {
	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		narration := strings.ToLower(s.Narration)
		heading := strings.ToLower(s.Heading)

		for _, p := range examplePhrases {
			if strings.Contains(narration, p) || strings.Contains(heading, p) {
				return Result{Pass, "Practical example with concrete numbers found"}
			}
		}
		if dollarPattern.MatchString(narration) || percentPattern.MatchString(narration) {
			return Result{Pass, "Practical example with concrete numbers found"}
		}
	}
	return Result{Warn, "No practical example with numbers or scenarios detected"}
}

// keyPhrases is the small set of fixed phrases at least one of which should
// appear somewhere in the narration.
var keyPhrases = []string{
	"every conversation has one goal",
	"a sale",
	"the more you sell",
}

func checkKeyPhrase(doc *script.Document) Result {
	var parts []string
	for i := range doc.Scenes {
		parts = append(parts, doc.Scenes[i].Narration)
	}
	full := strings.ToLower(strings.Join(parts, " "))

	for _, p := range keyPhrases {
		if strings.Contains(full, p) {
			return Result{Pass, "Key phrase present"}
		}
	}
	return Result{Warn, fmt.Sprintf("Key phrase not found. Add one of: %q", keyPhrases[0])}
}
