package timing

import (
	"math"
	"strings"
)

// Pacing constants shared by every scene.
const (
	// DefaultFPS is the pipeline frame rate.
	DefaultFPS = 30

	// HeadingSeconds is reserved at the start of every scene for the
	// heading reveal; narration-driven elements begin after it.
	HeadingSeconds = 1.5

	// MinAudioSeconds floors the measured audio duration so near-silent
	// clips do not blow up the speaking-rate division.
	MinAudioSeconds = 0.5

	// SilentSceneSeconds is the default length of a scene with no
	// narration and no explicit duration.
	SilentSceneSeconds = 4
)

// SceneTiming is the derived pacing for one narrated scene.
type SceneTiming struct {
	AudioDurationSec      float64     `json:"audioDurationSec"`
	WordsPerSecond        float64     `json:"wordsPerSecond"`
	FramesPerWord         int         `json:"framesPerWord"`
	HeadingDurationFrames int         `json:"headingDurationFrames"`
	BulletStartFrames     []int       `json:"bulletStartFrames"`
	WordTimestamps        []WordStamp `json:"wordTimestamps,omitempty"`
}

// WordCount counts whitespace-separated words in the narration, with a floor
// of one so empty narration never yields a zero rate.
func WordCount(narration string) int {
	fields := strings.Fields(narration)
	if len(fields) == 0 {
		return 1
	}
	return len(fields)
}

// CalculateSceneTiming derives the internal pacing of a narrated scene:
// speaking rate, heading reveal length, and evenly distributed bullet start
// frames across the post-heading portion of the audio.
func CalculateSceneTiming(narration string, audioDurationSec float64, points int, words []WordStamp, fps int) SceneTiming {
	wordCount := WordCount(narration)
	wps := float64(wordCount) / math.Max(audioDurationSec, MinAudioSeconds)

	t := SceneTiming{
		AudioDurationSec:      audioDurationSec,
		WordsPerSecond:        wps,
		FramesPerWord:         int(math.Round(float64(fps) / wps)),
		HeadingDurationFrames: int(math.Round(HeadingSeconds * float64(fps))),
		WordTimestamps:        words,
	}

	if points > 0 {
		remaining := math.Max(audioDurationSec-HeadingSeconds, 1)
		gap := remaining / float64(points)
		t.BulletStartFrames = make([]int, points)
		for b := 0; b < points; b++ {
			startSec := HeadingSeconds + float64(b)*gap
			t.BulletStartFrames[b] = int(math.Round(startSec * float64(fps)))
		}
	}
	return t
}

// NarratedSceneFrames is the total frame count of a narrated scene: the raw
// speech length plus the heading buffer, rounded up, never less than one.
func NarratedSceneFrames(audioDurationSec float64, fps int) int {
	frames := int(math.Ceil((audioDurationSec + HeadingSeconds) * float64(fps)))
	if frames < 1 {
		return 1
	}
	return frames
}

// SilentSceneFrames is the frame count of a scene without narration.
func SilentSceneFrames(explicitSeconds float64, fps int) int {
	if explicitSeconds > 0 {
		return int(math.Ceil(explicitSeconds * float64(fps)))
	}
	return SilentSceneSeconds * fps
}
