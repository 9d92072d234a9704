// Package probe discovers which TTS voices are usable for the caller's
// account by synthesizing a short sample per voice.
//
// Each attempt is fully isolated: one voice failing never aborts the loop,
// and the probe as a whole always completes with a report, even if every
// voice fails.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"text2audio/pkg/tts"
)

// SampleText is the fixed sample synthesized for every probed voice.
const SampleText = "Testing voice sample."

// voiceTimeout bounds a single synthesis attempt. A timeout becomes a
// failure entry for that voice, not an abort.
const voiceTimeout = 30 * time.Second

// Result holds the outcome of a single voice attempt.
type Result struct {
	Voice    string
	Err      error
	Duration time.Duration
}

// Failure pairs a voice name with the diagnostic message of its failed
// attempt.
type Failure struct {
	Voice   string
	Message string
}

// Report partitions probed voices into succeeded and failed, in input order.
// The partitions are disjoint and together cover exactly the input voices.
type Report struct {
	Succeeded []string
	Failed    []Failure
}

// Run attempts synthesis of SampleText for each voice, in order, writing
// per-voice sample files into dir. dir is treated as a disposable scratch
// area; Run creates files there but never cleans it up.
//
// Every voice gets exactly one attempt. Retry policy, if any, belongs to
// the injected provider.
func Run(ctx context.Context, p tts.Provider, voices []string, dir string) []Result {
	results := make([]Result, len(voices))

	for i, voice := range voices {
		start := time.Now()

		// Child context so a hanging attempt can't stall the whole probe.
		voiceCtx, cancel := context.WithTimeout(ctx, voiceTimeout)
		_, err := p.Synthesize(voiceCtx, SampleText, voice, filepath.Join(dir, voice))
		cancel()

		results[i] = Result{
			Voice:    voice,
			Err:      err,
			Duration: time.Since(start),
		}
	}

	return results
}

// Partition builds the ordered success/failure report from raw results.
func Partition(results []Result) Report {
	var report Report
	for _, r := range results {
		if r.Err != nil {
			report.Failed = append(report.Failed, Failure{Voice: r.Voice, Message: r.Err.Error()})
			continue
		}
		report.Succeeded = append(report.Succeeded, r.Voice)
	}
	return report
}

// LogResults writes a per-voice summary to the default logger.
func LogResults(results []Result) {
	slog.Info("Voice Probe Summary")

	for _, r := range results {
		status := "PASS"
		if r.Err != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-10s (%v)", status, r.Voice, r.Duration.Round(time.Millisecond))

		if r.Err != nil {
			slog.Error(msg, "error", r.Err)
		} else {
			slog.Info(msg)
		}
	}
}
