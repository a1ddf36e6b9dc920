package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeScript(t, `{
		"title": "Money Flow Basics",
		"voice_id": "v1",
		"scenes": [
			{"type": "wb-title", "title": "Money Flow Basics", "narration": "Welcome."},
			{"type": "wb-content", "heading": "The Flow", "narration": "Money moves.",
			 "points": ["one", "two"], "sectionLabel": "Flow",
			 "visuals": [{"type": "callout", "text": "Key idea", "trigger": "moves"}]},
			{"type": "wb-outro", "duration_seconds": 6}
		]
	}`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Title != "Money Flow Basics" || doc.VoiceID != "v1" {
		t.Errorf("header = %q / %q", doc.Title, doc.VoiceID)
	}
	if len(doc.Scenes) != 3 {
		t.Fatalf("scenes = %d, want 3", len(doc.Scenes))
	}
	if doc.Scenes[1].Visuals[0].Trigger != "moves" {
		t.Errorf("visual trigger = %q", doc.Scenes[1].Visuals[0].Trigger)
	}
	if doc.Scenes[2].DurationSeconds != 6 {
		t.Errorf("durationSeconds = %v", doc.Scenes[2].DurationSeconds)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	_, err := Load(writeScript(t, `{"title": "x", "scenes": [`))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestLoad_NoScenes(t *testing.T) {
	_, err := Load(writeScript(t, `{"title": "x", "scenes": []}`))
	if !errors.Is(err, ErrNoScenes) {
		t.Errorf("err = %v, want ErrNoScenes", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Money Flow Basics":          "money-flow-basics",
		"  The DM: Close & Upsell! ": "the-dm-close-upsell",
		"already-slugged":            "already-slugged",
	}
	for title, want := range cases {
		d := Document{Title: title}
		if got := d.Slug(); got != want {
			t.Errorf("Slug(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestContentScenes(t *testing.T) {
	d := Document{Scenes: []Scene{
		{Type: TypeWBTitle},
		{Type: TypeWBContent},
		{Type: TypeContent},
		{Type: TypeWBOutro},
	}}
	got := d.ContentScenes()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ContentScenes = %v, want [1 2]", got)
	}
}

func TestSceneName(t *testing.T) {
	s := Scene{Heading: "The Flow", Title: "ignored"}
	if s.Name() != "The Flow" {
		t.Errorf("Name = %q", s.Name())
	}
	s = Scene{Title: "Opening"}
	if s.Name() != "Opening" {
		t.Errorf("Name = %q", s.Name())
	}
	s = Scene{}
	if s.Name() != "untitled" {
		t.Errorf("Name = %q", s.Name())
	}
}
