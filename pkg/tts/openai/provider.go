// Package openai implements tts.Provider for the OpenAI speech endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"text2audio/pkg/tracker"
	"text2audio/pkg/tts"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements tts.Provider for OpenAI-compatible speech APIs.
type Provider struct {
	apiKey  string
	baseURL string
	params  tts.Params
	client  *http.Client
	tracker *tracker.Tracker
}

// NewProvider creates a new OpenAI TTS provider with validated parameters.
func NewProvider(apiKey, baseURL string, params tts.Params, t *tracker.Tracker) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		params:  params,
		client:  &http.Client{},
		tracker: t,
	}
}

// requestBody represents the JSON payload for the speech endpoint.
type requestBody struct {
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	Input          string  `json:"input"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
}

// Synthesize generates speech from text, streaming the response body to
// outputPath. On any failure the partial output file is removed.
//
// The voice argument overrides the configured default when non-empty. The
// instructions parameter is dropped (not sent) for the legacy models that
// reject it.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string) (string, error) {
	if p.apiKey == "" {
		return "", tts.NewFatalError(http.StatusUnauthorized, "api key is missing")
	}

	v := p.params.Voice
	if voice != "" {
		v = voice
	}

	reqData := requestBody{
		Model:          p.params.Model,
		Voice:          v,
		Input:          text,
		ResponseFormat: p.params.Format,
		Speed:          p.params.Speed,
	}
	if p.params.Instructions != "" && !tts.IsLegacyModel(p.params.Model) {
		reqData.Instructions = p.params.Instructions
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/audio/speech", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.trackFailure()
		tts.Log("OPENAI", text, 0, err)
		return "", fmt.Errorf("speech request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		p.trackFailure()
		tts.Log("OPENAI", text, resp.StatusCode, nil)

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", tts.NewFatalError(resp.StatusCode, fmt.Sprintf("openai auth failed: %s", string(body)))
		}
		return "", fmt.Errorf("openai speech api error (status %d): %s", resp.StatusCode, string(body))
	}

	ext, err := p.streamToFile(resp.Body, outputPath)
	resp.Body.Close()
	if err != nil {
		p.trackFailure()
		tts.Log("OPENAI", text, resp.StatusCode, err)
		return "", err
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess("openai-tts")
	}
	tts.Log("OPENAI", text, resp.StatusCode, nil)
	return ext, nil
}

func (p *Provider) streamToFile(body io.Reader, outputPath string) (string, error) {
	ext := p.params.Format
	filename := outputPath
	if filepath.Ext(filename) != "."+ext {
		filename = filename + "." + ext
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(f, body)
	f.Close() // Close to flush

	if err != nil {
		os.Remove(filename)
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	if written == 0 {
		os.Remove(filename)
		return "", fmt.Errorf("received empty audio from openai")
	}

	return ext, nil
}

func (p *Provider) trackFailure() {
	if p.tracker != nil {
		p.tracker.TrackAPIFailure("openai-tts")
	}
}
