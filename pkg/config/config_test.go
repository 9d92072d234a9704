package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text2audio.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	// File should now exist on disk
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, "tts-1-hd", cfg.TTS.Model)
	assert.Equal(t, "alloy", cfg.TTS.Voice)
	assert.Equal(t, "mp3", cfg.TTS.Format)
	assert.Equal(t, 1.0, cfg.TTS.Speed)
	assert.Equal(t, "english", cfg.Narrate.TargetLanguage)
	assert.Equal(t, []string{"openai"}, cfg.LLM.Chain)
	assert.Equal(t, 3, cfg.Request.Retries)
	assert.Equal(t, Duration(300*time.Second), cfg.Request.Timeout)
}

func TestLoad_MergesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text2audio.yaml")

	content := `
tts:
  model: gpt-4o-mini-tts
  voice: coral
narrate:
  target_language: spanish
request:
  timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "gpt-4o-mini-tts", cfg.TTS.Model)
	assert.Equal(t, "coral", cfg.TTS.Voice)
	assert.Equal(t, "spanish", cfg.Narrate.TargetLanguage)
	assert.Equal(t, Duration(30*time.Second), cfg.Request.Timeout)

	// Defaults kept for the rest
	assert.Equal(t, "mp3", cfg.TTS.Format)
	assert.Equal(t, 1.0, cfg.TTS.Speed)
}

func TestLoad_EnvKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "text2audio.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.LLM.OpenAI.Key)
}

func TestSave_InjectsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	require.NoError(t, Save(path, DefaultConfig()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "# Options: mp3, wav, opus, aac")
	assert.Contains(t, string(data), "# Range: 0.25 to 4.0")
}
