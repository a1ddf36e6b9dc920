// Package synth is the client for the speech-synthesis service. It exposes
// the timestamped endpoint for synced narration and the plain endpoint as a
// one-shot fallback when timestamp alignment is unavailable.
package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lessonforge/lessonforge/internal/timing"
)

// Synthesis errors.
var (
	// ErrMissingAPIKey aborts before any scene is processed.
	ErrMissingAPIKey = errors.New("synthesis API key is missing")

	// ErrSynthesisFailed means plain synthesis failed too; fatal for the
	// whole render, no further fallback exists.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Defaults matching the production voice profile.
const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_multilingual_v2"
	defaultTimeout = 60 * time.Second
)

// VoiceSettings tune the synthesized delivery.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings is the tuned narration profile.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.6,
		SimilarityBoost: 0.85,
		Style:           0.2,
		UseSpeakerBoost: true,
	}
}

// Config holds everything the client needs; values are threaded in at
// construction and never read from process-wide state.
type Config struct {
	APIKey        string
	BaseURL       string
	ModelID       string
	VoiceSettings VoiceSettings
	Timeout       time.Duration
}

// Client talks to the synthesis API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates the configuration and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Result is the tagged outcome of a synthesis attempt, so callers can tell a
// synced scene from a degraded one without inspecting control flow.
type Result struct {
	Audio        []byte
	Words        []timing.WordStamp
	UsedFallback bool
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type alignment struct {
	Characters              []string  `json:"characters"`
	CharacterStartTimesSecs []float64 `json:"character_start_times_seconds"`
	CharacterEndTimesSecs   []float64 `json:"character_end_times_seconds"`
}

type timestampedResponse struct {
	AudioBase64 string    `json:"audio_base64"`
	Alignment   alignment `json:"alignment"`
}

func (c *Client) post(ctx context.Context, url string, text string) (*http.Response, error) {
	body, err := json.Marshal(speechRequest{
		Text:          text,
		ModelID:       c.cfg.ModelID,
		VoiceSettings: c.cfg.VoiceSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

// SpeakWithTimestamps synthesizes text and returns the audio together with
// word-level timestamps reconstructed from the character alignment.
func (c *Client) SpeakWithTimestamps(ctx context.Context, voiceID, text string) ([]byte, []timing.WordStamp, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", c.cfg.BaseURL, voiceID)

	resp, err := c.post(ctx, url, text)
	if err != nil {
		return nil, nil, fmt.Errorf("timestamped synthesis request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("timestamped synthesis: HTTP %d: %s", resp.StatusCode, detail)
	}

	var tr timestampedResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, nil, fmt.Errorf("unable to decode timestamped response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(tr.AudioBase64)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to decode audio payload: %w", err)
	}

	words := timing.WordsFromChars(
		tr.Alignment.Characters,
		tr.Alignment.CharacterStartTimesSecs,
		tr.Alignment.CharacterEndTimesSecs,
	)
	return audio, words, nil
}

// Speak synthesizes text through the plain endpoint. No timestamps.
func (c *Client) Speak(ctx context.Context, voiceID, text string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.cfg.BaseURL, voiceID)

	resp, err := c.post(ctx, url, text)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis: HTTP %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio: %w", err)
	}
	return audio, nil
}

// SpeakWithFallback is the explicit two-attempt call: timestamped synthesis
// first, then exactly one plain attempt if it fails. The returned result is
// tagged so callers can distinguish synced from degraded scenes. A failure of
// the plain attempt is fatal and wraps ErrSynthesisFailed.
func (c *Client) SpeakWithFallback(ctx context.Context, voiceID, text string) (*Result, error) {
	audio, words, err := c.SpeakWithTimestamps(ctx, voiceID, text)
	if err == nil {
		return &Result{Audio: audio, Words: words}, nil
	}
	log.Warn("Timestamped synthesis failed, falling back to plain synthesis", "err", err)

	audio, err = c.Speak(ctx, voiceID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	return &Result{Audio: audio, UsedFallback: true}, nil
}
