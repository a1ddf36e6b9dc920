package synth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		VoiceSettings: DefaultVoiceSettings(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func timestampedBody(audio []byte, text string) []byte {
	var chars []string
	var starts, ends []float64
	for i, r := range text {
		chars = append(chars, string(r))
		starts = append(starts, float64(i)*0.1)
		ends = append(ends, float64(i+1)*0.1)
	}
	body, _ := json.Marshal(map[string]any{
		"audio_base64": base64.StdEncoding.EncodeToString(audio),
		"alignment": map[string]any{
			"characters":                    chars,
			"character_start_times_seconds": starts,
			"character_end_times_seconds":   ends,
		},
	})
	return body
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestSpeakWithTimestamps(t *testing.T) {
	audio := []byte("mp3-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/text-to-speech/voice-1/with-timestamps") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Error("missing API key header")
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["text"] != "hello, world" {
			t.Errorf("text = %v", req["text"])
		}
		if req["model_id"] != DefaultModelID {
			t.Errorf("model_id = %v", req["model_id"])
		}
		w.Write(timestampedBody(audio, "hello, world")) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, words, err := c.SpeakWithTimestamps(context.Background(), "voice-1", "hello, world")
	if err != nil {
		t.Fatalf("SpeakWithTimestamps: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("audio = %q, want %q", got, audio)
	}
	if len(words) != 2 || words[0].Word != "hello" || words[1].Word != "world" {
		t.Errorf("words = %v, want [hello world]", words)
	}
}

func TestSpeakWithFallback_UsesPlainOnTimestampFailure(t *testing.T) {
	audio := []byte("plain-audio")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/with-timestamps") {
			http.Error(w, "no timestamps for you", http.StatusInternalServerError)
			return
		}
		w.Write(audio) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.SpeakWithFallback(context.Background(), "voice-1", "some narration")
	if err != nil {
		t.Fatalf("SpeakWithFallback: %v", err)
	}
	if !res.UsedFallback {
		t.Error("result should be tagged as fallback")
	}
	if res.Words != nil {
		t.Error("fallback result must carry no word timestamps")
	}
	if string(res.Audio) != string(audio) {
		t.Errorf("audio = %q", res.Audio)
	}
}

func TestSpeakWithFallback_BothEndpointsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.SpeakWithFallback(context.Background(), "voice-1", "text")
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("err = %v, want ErrSynthesisFailed", err)
	}
}

func TestSpeakWithFallback_NoFallbackOnSuccess(t *testing.T) {
	plainCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/with-timestamps") {
			w.Write(timestampedBody([]byte("a"), "hi there")) //nolint:errcheck
			return
		}
		plainCalls++
		w.Write([]byte("b")) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.SpeakWithFallback(context.Background(), "voice-1", "hi there")
	if err != nil {
		t.Fatalf("SpeakWithFallback: %v", err)
	}
	if res.UsedFallback {
		t.Error("fallback flag set on a successful timestamped call")
	}
	if plainCalls != 0 {
		t.Errorf("plain endpoint called %d times, want 0", plainCalls)
	}
}
