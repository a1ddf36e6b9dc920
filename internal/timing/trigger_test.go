package timing

import "testing"

func stamps(words ...string) []WordStamp {
	out := make([]WordStamp, len(words))
	for i, w := range words {
		out[i] = WordStamp{Word: w, Start: float64(i), End: float64(i) + 0.5}
	}
	return out
}

func TestTriggerFrame_Match(t *testing.T) {
	ws := stamps("every", "conversation", "has", "one", "goal")

	frame, ok := TriggerFrame(ws, "goal", 30)
	if !ok {
		t.Fatal("expected a match for goal")
	}
	if frame != 120 {
		t.Errorf("frame = %d, want 120", frame)
	}
}

func TestTriggerFrame_NormalizesPunctuationAndCase(t *testing.T) {
	ws := stamps("big", "Sale.", "today")

	frame, ok := TriggerFrame(ws, "sale", 30)
	if !ok {
		t.Fatal("expected 'sale' to match 'Sale.'")
	}
	if frame != 30 {
		t.Errorf("frame = %d, want 30", frame)
	}
}

func TestTriggerFrame_FirstOccurrenceWins(t *testing.T) {
	ws := stamps("money", "flows", "money", "grows")

	frame, ok := TriggerFrame(ws, "money", 30)
	if !ok {
		t.Fatal("expected a match")
	}
	if frame != 0 {
		t.Errorf("frame = %d, want 0 (first occurrence)", frame)
	}

	// Pure function: same inputs, same output.
	again, _ := TriggerFrame(ws, "money", 30)
	if again != frame {
		t.Errorf("second call = %d, first = %d", again, frame)
	}
}

func TestTriggerFrame_NoMatch(t *testing.T) {
	ws := stamps("alpha", "beta")

	if _, ok := TriggerFrame(ws, "gamma", 30); ok {
		t.Error("unexpected match for absent word")
	}
	if _, ok := TriggerFrame(nil, "gamma", 30); ok {
		t.Error("unexpected match with nil timestamps")
	}
	if _, ok := TriggerFrame(ws, "", 30); ok {
		t.Error("unexpected match with empty trigger")
	}
	if _, ok := TriggerFrame(ws, "!!!", 30); ok {
		t.Error("trigger that normalizes to empty must not match")
	}
}

func TestFallbackFrame(t *testing.T) {
	// Heading ends at frame 45; each visual is staggered by 2.2s (66 frames).
	if got := FallbackFrame(45, 0, 30); got != 45 {
		t.Errorf("index 0 = %d, want 45", got)
	}
	if got := FallbackFrame(45, 2, 30); got != 177 {
		t.Errorf("index 2 = %d, want 177", got)
	}
}
