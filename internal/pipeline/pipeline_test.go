package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lessonforge/lessonforge/internal/cache"
	"github.com/lessonforge/lessonforge/internal/script"
	"github.com/lessonforge/lessonforge/internal/synth"
	"github.com/lessonforge/lessonforge/internal/timing"
)

// oneSecondMP3 is a minimal MPEG1 layer III payload measuring ~1s at 128 kbps.
func oneSecondMP3() []byte {
	return append([]byte{0xff, 0xfb, 0x90, 0x00}, bytes.Repeat([]byte{0}, 16000-4)...)
}

// fakeSynth records calls and plays back canned results in order.
type fakeSynth struct {
	calls   []string
	words   []timing.WordStamp
	fail    bool
	useFall bool
}

func (f *fakeSynth) SpeakWithFallback(_ context.Context, _, text string) (*synth.Result, error) {
	f.calls = append(f.calls, text)
	if f.fail {
		return nil, synth.ErrSynthesisFailed
	}
	return &synth.Result{Audio: oneSecondMP3(), Words: f.words, UsedFallback: f.useFall}, nil
}

func testDoc() *script.Document {
	return &script.Document{
		Title:   "Money Flow Basics",
		VoiceID: "voice-test",
		Scenes: []script.Scene{
			{Type: script.TypeWBTitle, Title: "Intro", Narration: "Welcome to the lesson everyone.", SectionLabel: "Intro"},
			{Type: script.TypeWBContent, Heading: "Flow", Narration: "Money moves from fans to you.",
				Points: []string{"a", "b"}, SectionLabel: "Flow",
				Visuals: []script.Visual{
					{Type: "callout", Text: "Key idea", Trigger: "money"},
					{Type: "stat", Value: "80%", Trigger: "unspoken"},
				}},
			{Type: script.TypeWBOutro, SectionLabel: "Recap"}, // silent outro card
		},
	}
}

func TestProcessScenes(t *testing.T) {
	dir := t.TempDir()
	fs := &fakeSynth{words: []timing.WordStamp{{Word: "Money", Start: 0.2, End: 0.5}}}

	p := New(Config{FPS: 30, AudioDir: filepath.Join(dir, "audio"), Synth: fs})
	in, err := p.ProcessScenes(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("ProcessScenes: %v", err)
	}

	if len(in.Scenes) != 3 {
		t.Fatalf("scenes = %d, want 3", len(in.Scenes))
	}

	// Scenes are synthesized in document order.
	if len(fs.calls) != 2 || fs.calls[0] != "Welcome to the lesson everyone." {
		t.Errorf("synthesis calls out of order: %v", fs.calls)
	}

	// 1s audio + 1.5s buffer at 30fps = 75 frames.
	if in.Scenes[0].DurationInFrames != 75 {
		t.Errorf("scene 1 frames = %d, want 75", in.Scenes[0].DurationInFrames)
	}
	// Silent scene defaults to 4s.
	if in.Scenes[2].DurationInFrames != 120 {
		t.Errorf("silent scene frames = %d, want 120", in.Scenes[2].DurationInFrames)
	}

	// Total is the sum of all scene durations.
	sum := 0
	for _, s := range in.Scenes {
		sum += s.DurationInFrames
	}
	if in.TotalDurationInFrames != sum {
		t.Errorf("totalDurationInFrames = %d, want %d", in.TotalDurationInFrames, sum)
	}

	// Bullets only on the scene that has points.
	if in.Scenes[0].BulletStartFrames != nil {
		t.Error("scene without points has bullet frames")
	}
	if len(in.Scenes[1].BulletStartFrames) != 2 {
		t.Errorf("bullet frames = %v, want 2 entries", in.Scenes[1].BulletStartFrames)
	}

	// First visual's trigger matches "Money" spoken at 0.2s (frame 6); the
	// second never matches and staggers off the heading end (45 + 66).
	if got := in.Scenes[1].VisualStartFrames; len(got) != 2 || got[0] != 6 || got[1] != 111 {
		t.Errorf("visualStartFrames = %v, want [6 111]", got)
	}

	// Audio files land in the working dir.
	if _, err := os.Stat(filepath.Join(dir, "audio", "scene-0.mp3")); err != nil {
		t.Errorf("scene audio not written: %v", err)
	}
	if in.Scenes[0].AudioFile != filepath.Join("audio", "scene-0.mp3") {
		t.Errorf("audioFile = %q", in.Scenes[0].AudioFile)
	}
	if in.Scenes[2].AudioFile != "" {
		t.Error("silent scene should have no audio file")
	}
}

func TestProcessScenes_SynthesisFailureAborts(t *testing.T) {
	p := New(Config{FPS: 30, AudioDir: filepath.Join(t.TempDir(), "audio"), Synth: &fakeSynth{fail: true}})

	_, err := p.ProcessScenes(context.Background(), testDoc())
	if !errors.Is(err, synth.ErrSynthesisFailed) {
		t.Errorf("err = %v, want ErrSynthesisFailed", err)
	}
}

func TestProcessScenes_ClearsWorkingDir(t *testing.T) {
	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(audioDir, "scene-9.mp3")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(Config{FPS: 30, AudioDir: audioDir, Synth: &fakeSynth{}})
	if _, err := p.ProcessScenes(context.Background(), testDoc()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale audio from a previous render survived")
	}
}

func TestProcessScenes_WritesCache(t *testing.T) {
	dir := t.TempDir()
	ac, err := cache.Open(filepath.Join(dir, "cache"), 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	words := []timing.WordStamp{{Word: "Money", Start: 0.2, End: 0.5}}
	p := New(Config{FPS: 30, AudioDir: filepath.Join(dir, "audio"), Synth: &fakeSynth{words: words}, Cache: ac})

	doc := testDoc()
	if _, err := p.ProcessScenes(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	entry, ok := ac.Get(cache.Key("voice-test", doc.Scenes[1].Narration))
	if !ok {
		t.Fatal("scene audio not cached")
	}
	if len(entry.Words) != 1 || entry.Words[0].Word != "Money" {
		t.Errorf("cached words = %v", entry.Words)
	}
}

func TestProcessScenesFromCache(t *testing.T) {
	dir := t.TempDir()
	ac, err := cache.Open(filepath.Join(dir, "cache"), 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc()
	// Pre-cache only the second scene.
	key := cache.Key("voice-test", doc.Scenes[1].Narration)
	if err := ac.Put(key, &cache.Entry{Audio: oneSecondMP3(), Words: []timing.WordStamp{{Word: "Money"}}}); err != nil {
		t.Fatal(err)
	}

	p := New(Config{FPS: 30, AudioDir: filepath.Join(dir, "audio"), Cache: ac})
	in, placeholders, err := p.ProcessScenesFromCache(doc)
	if err != nil {
		t.Fatalf("ProcessScenesFromCache: %v", err)
	}

	if placeholders != 1 {
		t.Errorf("placeholders = %d, want 1 (only scene 1 is uncached)", placeholders)
	}
	// Uncached narrated scene gets the 5s placeholder.
	if in.Scenes[0].DurationInFrames != 150 {
		t.Errorf("placeholder frames = %d, want 150", in.Scenes[0].DurationInFrames)
	}
	// Cached scene gets real timing from the cached audio.
	if in.Scenes[1].DurationInFrames != 75 {
		t.Errorf("cached scene frames = %d, want 75", in.Scenes[1].DurationInFrames)
	}
	if len(in.Scenes[1].WordTimestamps) != 1 {
		t.Errorf("cached timestamps missing: %v", in.Scenes[1].WordTimestamps)
	}
}

func TestCaptureFrame(t *testing.T) {
	dir := t.TempDir()
	p := New(Config{FPS: 30, AudioDir: filepath.Join(dir, "audio"), Synth: &fakeSynth{}})
	in, err := p.ProcessScenes(context.Background(), testDoc())
	if err != nil {
		t.Fatal(err)
	}

	// Scene 1 starts at frame 75 and is 75 frames long; 75% in = offset 56.
	got := CaptureFrame(in, 1)
	want := 75 + 56
	if got != want {
		t.Errorf("CaptureFrame = %d, want %d", got, want)
	}

	// Out-of-range target falls back to the first scene.
	if got := CaptureFrame(in, 99); got != 56 {
		t.Errorf("out-of-range CaptureFrame = %d, want 56", got)
	}
}
