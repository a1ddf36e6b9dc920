// Package render is the boundary to the visual rendering engine. The
// pipeline hands it fully timed scenes; what the renderer paints is its own
// business and never inspected here.
package render

import (
	"github.com/lessonforge/lessonforge/internal/script"
	"github.com/lessonforge/lessonforge/internal/timing"
)

// ProcessedScene is a scene enriched with everything the renderer needs to
// place it on the timeline: total frames, the audio file, and the pacing
// data driving synced animations.
type ProcessedScene struct {
	script.Scene

	DurationInFrames      int                `json:"durationInFrames"`
	AudioFile             string             `json:"audioFile,omitempty"`
	AudioDurationSec      float64            `json:"audioDurationSec,omitempty"`
	WordsPerSecond        float64            `json:"wordsPerSecond,omitempty"`
	FramesPerWord         int                `json:"framesPerWord,omitempty"`
	HeadingDurationFrames int                `json:"headingDurationFrames,omitempty"`
	BulletStartFrames     []int              `json:"bulletStartFrames,omitempty"`
	VisualStartFrames     []int              `json:"visualStartFrames,omitempty"`
	WordTimestamps        []timing.WordStamp `json:"wordTimestamps,omitempty"`
}

// Input is the complete render payload for one document.
type Input struct {
	Title                 string           `json:"title"`
	FPS                   int              `json:"fps"`
	Scenes                []ProcessedScene `json:"scenes"`
	TotalDurationInFrames int              `json:"totalDurationInFrames"`
	AudioDir              string           `json:"audioDir,omitempty"`
}

// Renderer produces media artifacts from timed scenes.
type Renderer interface {
	// RenderVideo renders the full composition and returns the output path.
	RenderVideo(in *Input, outputPath string) error

	// RenderStill renders a single frame as an image.
	RenderStill(in *Input, frame int, outputPath string) error
}

// sceneHandlers is the closed mapping from scene type tags to renderer
// components. Unrecognized tags fall through to defaultHandler.
var sceneHandlers = map[string]string{
	script.TypeTitle:     "TitleScene",
	script.TypeContent:   "ContentScene",
	script.TypeOutro:     "OutroScene",
	script.TypeWBTitle:   "WhiteboardTitleScene",
	script.TypeWBContent: "WhiteboardContentScene",
	script.TypeWBOutro:   "WhiteboardOutroScene",
}

const defaultHandler = "ContentScene"

// HandlerFor returns the renderer component for a scene type, falling back
// to the default content handler for unknown tags.
func HandlerFor(sceneType string) string {
	if h, ok := sceneHandlers[sceneType]; ok {
		return h
	}
	return defaultHandler
}
