package timing

import "testing"

// chars splits a string into single-character strings the way the synthesis
// API reports its alignment.
func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// evenTimes fabricates per-character start/end times at 0.1s per character.
func evenTimes(n int) (starts, ends []float64) {
	starts = make([]float64, n)
	ends = make([]float64, n)
	for i := 0; i < n; i++ {
		starts[i] = float64(i) / 10
		ends[i] = float64(i+1) / 10
	}
	return starts, ends
}

func TestWordsFromChars_CommaIsDelimiter(t *testing.T) {
	c := chars("hello, world")
	starts, ends := evenTimes(len(c))

	words := WordsFromChars(c, starts, ends)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %v", len(words), words)
	}
	if words[0].Word != "hello" {
		t.Errorf("first word = %q, want %q (comma must be absorbed)", words[0].Word, "hello")
	}
	if words[1].Word != "world" {
		t.Errorf("second word = %q, want %q", words[1].Word, "world")
	}
}

func TestWordsFromChars_OtherPunctuationRetained(t *testing.T) {
	c := chars("hello world.")
	starts, ends := evenTimes(len(c))

	words := WordsFromChars(c, starts, ends)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[1].Word != "world." {
		t.Errorf("trailing period must stay attached: got %q, want %q", words[1].Word, "world.")
	}
}

func TestWordsFromChars_Timestamps(t *testing.T) {
	c := chars("hi, yo")
	starts, ends := evenTimes(len(c))

	words := WordsFromChars(c, starts, ends)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}

	// "hi" covers characters 0-1, "yo" covers characters 4-5.
	if words[0].Start != 0.0 || words[0].End != 0.2 {
		t.Errorf("hi: got [%v, %v], want [0, 0.2]", words[0].Start, words[0].End)
	}
	if words[1].Start != 0.4 || words[1].End != 0.6 {
		t.Errorf("yo: got [%v, %v], want [0.4, 0.6]", words[1].Start, words[1].End)
	}
}

func TestWordsFromChars_EdgeCases(t *testing.T) {
	if got := WordsFromChars(nil, nil, nil); len(got) != 0 {
		t.Errorf("nil input should yield no words, got %v", got)
	}

	// Only delimiters.
	c := chars(" ,\n\t")
	starts, ends := evenTimes(len(c))
	if got := WordsFromChars(c, starts, ends); len(got) != 0 {
		t.Errorf("delimiter-only input should yield no words, got %v", got)
	}

	// Trailing word without a closing delimiter is flushed.
	c = chars("end")
	starts, ends = evenTimes(len(c))
	got := WordsFromChars(c, starts, ends)
	if len(got) != 1 || got[0].Word != "end" {
		t.Errorf("trailing word not flushed: %v", got)
	}
}

func TestWordsFromChars_MismatchedSlices(t *testing.T) {
	// Shorter timing slices truncate the scan instead of panicking.
	c := chars("abc def")
	starts, ends := evenTimes(3)
	got := WordsFromChars(c, starts, ends)
	if len(got) != 1 || got[0].Word != "abc" {
		t.Errorf("expected only the covered word, got %v", got)
	}
}
