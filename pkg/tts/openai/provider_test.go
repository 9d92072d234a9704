package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2audio/pkg/tracker"
	"text2audio/pkg/tts"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "ttslog")
	tts.SetLogPath(filepath.Join(dir, "tts.log"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func mustParams(t *testing.T, model, format string, instructions string) tts.Params {
	t.Helper()
	p, err := tts.NewParams(model, "alloy", format, 1.0, instructions)
	require.NoError(t, err)
	return p
}

func TestSynthesize_WritesAudioFile(t *testing.T) {
	var got requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Write([]byte("fake mp3 bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "narration.mp3")

	p := NewProvider("key", server.URL, mustParams(t, "gpt-4o-mini-tts", "mp3", "speak warmly"), tracker.New())

	ext, err := p.Synthesize(context.Background(), "Hello there.", "", out)
	require.NoError(t, err)
	assert.Equal(t, "mp3", ext)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "fake mp3 bytes", string(data))

	assert.Equal(t, "gpt-4o-mini-tts", got.Model)
	assert.Equal(t, "alloy", got.Voice)
	assert.Equal(t, "Hello there.", got.Input)
	assert.Equal(t, "mp3", got.ResponseFormat)
	assert.Equal(t, "speak warmly", got.Instructions)
}

func TestSynthesize_VoiceOverride(t *testing.T) {
	var got requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	p := NewProvider("key", server.URL, mustParams(t, "tts-1", "mp3", ""), nil)

	_, err := p.Synthesize(context.Background(), "sample", "coral", filepath.Join(t.TempDir(), "out.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "coral", got.Voice)
}

func TestSynthesize_DropsInstructionsForLegacyModels(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	p := NewProvider("key", server.URL, mustParams(t, "tts-1-hd", "mp3", "whisper"), nil)

	_, err := p.Synthesize(context.Background(), "sample", "", filepath.Join(t.TempDir(), "out.mp3"))
	require.NoError(t, err)

	_, present := raw["instructions"]
	assert.False(t, present, "instructions must not be sent to legacy models")
}

func TestSynthesize_AppendsExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	dir := t.TempDir()
	p := NewProvider("key", server.URL, mustParams(t, "tts-1", "wav", ""), nil)

	_, err := p.Synthesize(context.Background(), "sample", "", filepath.Join(dir, "probe_alloy"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "probe_alloy.wav"))
	assert.NoError(t, err)
}

func TestSynthesize_APIErrorLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"unknown voice"}}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp3")
	tr := tracker.New()
	p := NewProvider("key", server.URL, mustParams(t, "tts-1", "mp3", ""), tr)

	_, err := p.Synthesize(context.Background(), "sample", "", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial file may be retained")

	assert.Equal(t, int64(1), tr.Snapshot()["openai-tts"].APIFailures)
}

func TestSynthesize_EmptyBodyRemovesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with no bytes at all
	}))
	defer server.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp3")
	p := NewProvider("key", server.URL, mustParams(t, "tts-1", "mp3", ""), nil)

	_, err := p.Synthesize(context.Background(), "sample", "", out)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSynthesize_AuthFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewProvider("key", server.URL, mustParams(t, "tts-1", "mp3", ""), nil)

	_, err := p.Synthesize(context.Background(), "sample", "", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
	assert.True(t, tts.IsFatalError(err))
}

func TestSynthesize_MissingKeyFailsBeforeCall(t *testing.T) {
	p := NewProvider("", "http://localhost:0", mustParams(t, "tts-1", "mp3", ""), nil)

	_, err := p.Synthesize(context.Background(), "sample", "", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
	assert.True(t, tts.IsFatalError(err))
}
