package timing

import (
	"math"
	"strings"
)

// FallbackStaggerSeconds spaces visuals that have no trigger match.
const FallbackStaggerSeconds = 2.2

// normalizeWord lowercases and strips everything but letters and digits, so
// "Sale," and "sale" compare equal.
func normalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TriggerFrame resolves a visual's trigger word to the frame at which that
// word is first spoken. The first occurrence always wins when a word repeats.
// Returns ok=false when the trigger or timestamps are missing or no word
// matches; the caller must then fall back to FallbackFrame.
func TriggerFrame(words []WordStamp, trigger string, fps int) (int, bool) {
	if len(words) == 0 || trigger == "" {
		return 0, false
	}
	want := normalizeWord(trigger)
	if want == "" {
		return 0, false
	}
	for _, w := range words {
		if normalizeWord(w.Word) == want {
			return int(math.Round(w.Start * float64(fps))), true
		}
	}
	return 0, false
}

// FallbackFrame is the deterministic schedule used when trigger matching
// fails: visuals appear after the heading, staggered by index.
func FallbackFrame(headingEndFrame, index, fps int) int {
	return headingEndFrame + index*int(math.Round(FallbackStaggerSeconds*float64(fps)))
}
