// Package timing converts speech-synthesis alignment data into the
// frame-accurate schedules the renderer consumes: word timestamps, per-scene
// pacing, and per-visual trigger frames.
package timing

// WordStamp is a single spoken word with its start and end in seconds.
// Sequences are ordered by spoken position and never mutated after creation.
type WordStamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// isDelimiter reports whether c ends the current word. Commas are stripped
// like whitespace; all other punctuation stays attached to its word.
func isDelimiter(c string) bool {
	return c == " " || c == "\n" || c == "\t" || c == ","
}

// WordsFromChars reconstructs word-level timestamps from the character-level
// alignment returned by the synthesis API. The three slices are parallel; a
// word's start is its first character's start time and its end is its last
// character's end time.
func WordsFromChars(chars []string, starts, ends []float64) []WordStamp {
	n := len(chars)
	if len(starts) < n {
		n = len(starts)
	}
	if len(ends) < n {
		n = len(ends)
	}

	var words []WordStamp
	var current string
	var wordStart, wordEnd float64

	for i := 0; i < n; i++ {
		c := chars[i]
		if isDelimiter(c) {
			if current != "" {
				words = append(words, WordStamp{Word: current, Start: wordStart, End: wordEnd})
				current = ""
			}
			continue
		}
		if current == "" {
			wordStart = starts[i]
		}
		wordEnd = ends[i]
		current += c
	}
	if current != "" {
		words = append(words, WordStamp{Word: current, Start: wordStart, End: wordEnd})
	}
	return words
}
