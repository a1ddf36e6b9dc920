// Package pipeline turns a validated script document into fully timed scenes
// ready for the render engine. Scenes are processed strictly in document
// order because frame offsets accumulate scene by scene.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lessonforge/lessonforge/internal/audio"
	"github.com/lessonforge/lessonforge/internal/cache"
	"github.com/lessonforge/lessonforge/internal/render"
	"github.com/lessonforge/lessonforge/internal/script"
	"github.com/lessonforge/lessonforge/internal/synth"
	"github.com/lessonforge/lessonforge/internal/timing"
)

// previewPlaceholderSeconds stands in for narrated scenes whose audio is not
// cached when previewing.
const previewPlaceholderSeconds = 5

// Synthesizer is the slice of the synthesis client the pipeline needs.
type Synthesizer interface {
	SpeakWithFallback(ctx context.Context, voiceID, text string) (*synth.Result, error)
}

// Config carries the pipeline's explicit dependencies and knobs.
type Config struct {
	FPS      int
	AudioDir string // working dir for scene audio; cleared per render

	Synth Synthesizer       // required for full renders
	Cache *cache.AudioCache // optional; nil disables caching
}

// Pipeline drives scene processing for one or more documents.
type Pipeline struct {
	cfg Config
}

// New builds a pipeline. FPS defaults to the standard frame rate.
func New(cfg Config) *Pipeline {
	if cfg.FPS == 0 {
		cfg.FPS = timing.DefaultFPS
	}
	return &Pipeline{cfg: cfg}
}

// resetAudioDir clears and recreates the working audio directory. A single
// render owns the directory; concurrent renders over the same directory are
// not supported.
func (p *Pipeline) resetAudioDir() error {
	if err := os.RemoveAll(p.cfg.AudioDir); err != nil {
		return fmt.Errorf("unable to clear audio dir: %w", err)
	}
	if err := os.MkdirAll(p.cfg.AudioDir, 0o755); err != nil {
		return fmt.Errorf("unable to create audio dir: %w", err)
	}
	return nil
}

func (p *Pipeline) voiceFor(doc *script.Document) string {
	if doc.VoiceID != "" {
		return doc.VoiceID
	}
	return synth.DefaultVoiceID
}

func sceneAudioName(i int) string {
	return fmt.Sprintf("scene-%d.mp3", i)
}

// visualFrames resolves each visual's appearance frame: the first spoken
// occurrence of its trigger word, or the staggered fallback schedule when
// the trigger never matches.
func visualFrames(visuals []script.Visual, words []timing.WordStamp, headingEndFrame, fps int) []int {
	if len(visuals) == 0 {
		return nil
	}
	frames := make([]int, len(visuals))
	for i, v := range visuals {
		if f, ok := timing.TriggerFrame(words, v.Trigger, fps); ok {
			frames[i] = f
			continue
		}
		frames[i] = timing.FallbackFrame(headingEndFrame, i, fps)
	}
	return frames
}

// ProcessScenes synthesizes every narrated scene and derives its frame
// schedule. Scene synthesis is awaited to completion before the next scene
// begins; a scene whose timestamped synthesis fails is degraded to heuristic
// timing, while total synthesis failure aborts the document.
func (p *Pipeline) ProcessScenes(ctx context.Context, doc *script.Document) (*render.Input, error) {
	if p.cfg.Synth == nil {
		return nil, fmt.Errorf("no synthesizer configured")
	}
	if err := p.resetAudioDir(); err != nil {
		return nil, err
	}

	voiceID := p.voiceFor(doc)
	in := &render.Input{
		Title:    doc.Title,
		FPS:      p.cfg.FPS,
		AudioDir: p.cfg.AudioDir,
		Scenes:   make([]render.ProcessedScene, 0, len(doc.Scenes)),
	}

	for i := range doc.Scenes {
		scene := &doc.Scenes[i]
		log.Info("Processing scene", "index", i+1, "total", len(doc.Scenes), "type", scene.Type, "name", scene.Name())

		ps := render.ProcessedScene{Scene: *scene}

		if scene.Narration != "" {
			res, err := p.cfg.Synth.SpeakWithFallback(ctx, voiceID, scene.Narration)
			if err != nil {
				return nil, fmt.Errorf("scene %d: %w", i+1, err)
			}

			audioPath := filepath.Join(p.cfg.AudioDir, sceneAudioName(i))
			if err := os.WriteFile(audioPath, res.Audio, 0o644); err != nil {
				return nil, fmt.Errorf("scene %d: unable to write audio: %w", i+1, err)
			}

			durationSec, err := audio.Duration(audioPath)
			if err != nil {
				return nil, fmt.Errorf("scene %d: %w", i+1, err)
			}

			t := timing.CalculateSceneTiming(scene.Narration, durationSec, len(scene.Points), res.Words, p.cfg.FPS)
			ps.DurationInFrames = timing.NarratedSceneFrames(durationSec, p.cfg.FPS)
			ps.AudioFile = filepath.Join("audio", sceneAudioName(i))
			ps.AudioDurationSec = t.AudioDurationSec
			ps.WordsPerSecond = t.WordsPerSecond
			ps.FramesPerWord = t.FramesPerWord
			ps.HeadingDurationFrames = t.HeadingDurationFrames
			ps.BulletStartFrames = t.BulletStartFrames
			ps.VisualStartFrames = visualFrames(scene.Visuals, res.Words, t.HeadingDurationFrames, p.cfg.FPS)
			ps.WordTimestamps = res.Words

			if res.UsedFallback {
				log.Warn("Scene has no word timestamps, visuals use fallback timing", "scene", i+1)
			}
			log.Info("Scene timed",
				"scene", i+1,
				"audioSec", fmt.Sprintf("%.1f", durationSec),
				"frames", ps.DurationInFrames,
				"wps", fmt.Sprintf("%.1f", t.WordsPerSecond))

			if p.cfg.Cache != nil {
				key := cache.Key(voiceID, scene.Narration)
				if err := p.cfg.Cache.Put(key, &cache.Entry{Audio: res.Audio, Words: res.Words}); err != nil {
					log.Warn("Unable to cache scene audio", "scene", i+1, "err", err)
				}
			}
		} else {
			ps.DurationInFrames = timing.SilentSceneFrames(scene.DurationSeconds, p.cfg.FPS)
		}

		in.Scenes = append(in.Scenes, ps)
		in.TotalDurationInFrames += ps.DurationInFrames
	}

	log.Info("Document processed",
		"scenes", len(in.Scenes),
		"totalFrames", in.TotalDurationInFrames,
		"seconds", fmt.Sprintf("%.1f", float64(in.TotalDurationInFrames)/float64(p.cfg.FPS)))
	return in, nil
}

// ProcessScenesFromCache is the preview path: it never synthesizes. Cached
// narration is copied into the working dir with its stored timestamps;
// uncached narrated scenes get a fixed placeholder duration. Returns the
// render input and the number of placeholder scenes.
func (p *Pipeline) ProcessScenesFromCache(doc *script.Document) (*render.Input, int, error) {
	if err := os.MkdirAll(p.cfg.AudioDir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("unable to create audio dir: %w", err)
	}

	voiceID := p.voiceFor(doc)
	in := &render.Input{
		Title:    doc.Title,
		FPS:      p.cfg.FPS,
		AudioDir: p.cfg.AudioDir,
		Scenes:   make([]render.ProcessedScene, 0, len(doc.Scenes)),
	}
	placeholders := 0

	for i := range doc.Scenes {
		scene := &doc.Scenes[i]
		ps := render.ProcessedScene{Scene: *scene}

		if scene.Narration == "" {
			ps.DurationInFrames = timing.SilentSceneFrames(scene.DurationSeconds, p.cfg.FPS)
			in.Scenes = append(in.Scenes, ps)
			in.TotalDurationInFrames += ps.DurationInFrames
			continue
		}

		cached := false
		if p.cfg.Cache != nil {
			if entry, ok := p.cfg.Cache.Get(cache.Key(voiceID, scene.Narration)); ok {
				audioPath := filepath.Join(p.cfg.AudioDir, sceneAudioName(i))
				if err := os.WriteFile(audioPath, entry.Audio, 0o644); err != nil {
					return nil, 0, fmt.Errorf("scene %d: unable to write audio: %w", i+1, err)
				}
				durationSec, err := audio.Duration(audioPath)
				if err != nil {
					return nil, 0, fmt.Errorf("scene %d: %w", i+1, err)
				}
				t := timing.CalculateSceneTiming(scene.Narration, durationSec, len(scene.Points), entry.Words, p.cfg.FPS)
				ps.DurationInFrames = timing.NarratedSceneFrames(durationSec, p.cfg.FPS)
				ps.AudioFile = filepath.Join("audio", sceneAudioName(i))
				ps.AudioDurationSec = durationSec
				ps.WordsPerSecond = t.WordsPerSecond
				ps.FramesPerWord = t.FramesPerWord
				ps.HeadingDurationFrames = t.HeadingDurationFrames
				ps.BulletStartFrames = t.BulletStartFrames
				ps.VisualStartFrames = visualFrames(scene.Visuals, entry.Words, t.HeadingDurationFrames, p.cfg.FPS)
				ps.WordTimestamps = entry.Words
				cached = true
			}
		}
		if !cached {
			log.Warn("Scene not cached, using placeholder duration", "scene", i+1)
			ps.DurationInFrames = previewPlaceholderSeconds * p.cfg.FPS
			placeholders++
		}

		in.Scenes = append(in.Scenes, ps)
		in.TotalDurationInFrames += ps.DurationInFrames
	}
	return in, placeholders, nil
}

// CaptureFrame picks the frame to preview for a target scene: 75% of the way
// through it, where the most content is on screen.
func CaptureFrame(in *render.Input, targetScene int) int {
	if targetScene < 0 || targetScene >= len(in.Scenes) {
		targetScene = 0
	}
	offset := 0
	for i := 0; i < targetScene; i++ {
		offset += in.Scenes[i].DurationInFrames
	}
	return offset + int(math.Round(float64(in.Scenes[targetScene].DurationInFrames)*0.75))
}
