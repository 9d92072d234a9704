// Package narrate runs the end-to-end strip, translate-decide, synthesize
// flow for one input file.
package narrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"text2audio/pkg/audio"
	"text2audio/pkg/store"
	"text2audio/pkg/textprep"
	"text2audio/pkg/tts"
)

// Translator produces synthesis-ready text in the target language.
// Implementations decide whether a remote translation is needed at all.
type Translator interface {
	Decide(ctx context.Context, text, targetLanguage string) (string, error)
}

// Options controls a single pipeline run.
type Options struct {
	TargetLanguage string
	// NoTranslate skips the translation decision entirely; the stripped
	// text goes to synthesis as-is.
	NoTranslate bool
	// Voice overrides the provider's configured voice when non-empty.
	Voice string
}

// Result summarizes a completed run.
type Result struct {
	OutputFile string
	Translated bool
	Chars      int
	Duration   time.Duration
}

// Pipeline wires the narration stages together. History is optional; a nil
// store disables run recording.
type Pipeline struct {
	translator Translator
	provider   tts.Provider
	history    store.Store
	params     tts.Params
}

// New creates a Pipeline. params must be the same validated set the
// provider was built with, so recorded history matches what was sent.
func New(t Translator, p tts.Provider, params tts.Params, history store.Store) *Pipeline {
	return &Pipeline{
		translator: t,
		provider:   p,
		history:    history,
		params:     params,
	}
}

// Run narrates the file at inputPath into outputPath.
//
// Synthesis failures are fatal and leave no partial output file behind;
// that contract is owned by the provider. Translation failures are fatal
// too: the pipeline never narrates untranslated text silently.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string, opts Options) (*Result, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	text := textprep.Strip(string(raw))
	if text == "" {
		return nil, fmt.Errorf("input file %s contains no narratable text", inputPath)
	}
	slog.Debug("Narrate: stripped input", "file", inputPath, "chars", len(text))

	translated := false
	if !opts.NoTranslate {
		decided, err := p.translator.Decide(ctx, text, opts.TargetLanguage)
		if err != nil {
			return nil, err
		}
		translated = decided != text
		text = decided
	}

	ext, err := p.provider.Synthesize(ctx, text, opts.Voice, outputPath)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	finalPath := outputPath
	if filepath.Ext(finalPath) != "."+ext {
		finalPath += "." + ext
	}

	result := &Result{
		OutputFile: finalPath,
		Translated: translated,
		Chars:      len(text),
	}

	if fi, err := os.Stat(finalPath); err == nil && fi.Size() < tts.MinAudioSize {
		slog.Warn("Narrate: output file is suspiciously small", "file", finalPath, "bytes", fi.Size())
	}

	// Duration readout is informational; decode failure doesn't fail the run.
	if d, err := audio.GetDuration(finalPath); err == nil {
		result.Duration = d
	} else {
		slog.Debug("Narrate: could not determine audio duration", "file", finalPath, "error", err)
	}

	p.record(ctx, inputPath, opts, result)

	slog.Info("Narrate: done", "output", finalPath, "translated", translated, "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) record(ctx context.Context, inputPath string, opts Options, result *Result) {
	if p.history == nil {
		return
	}

	voice := p.params.Voice
	if opts.Voice != "" {
		voice = opts.Voice
	}

	err := p.history.RecordNarration(ctx, &store.Narration{
		SourceFile:     inputPath,
		OutputFile:     result.OutputFile,
		TargetLanguage: textprep.NormalizeLanguage(opts.TargetLanguage),
		Translated:     result.Translated,
		TTSModel:       p.params.Model,
		Voice:          voice,
		Format:         p.params.Format,
		Speed:          p.params.Speed,
		Chars:          result.Chars,
		Duration:       result.Duration,
	})
	if err != nil {
		slog.Warn("Narrate: failed to record history", "error", err)
	}
}
