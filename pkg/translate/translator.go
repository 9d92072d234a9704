// Package translate decides whether narration text needs translating and,
// when it does, requests the translation from an injected llm.Provider.
package translate

import (
	"context"
	"fmt"
	"strings"

	"text2audio/pkg/llm"
	"text2audio/pkg/textprep"
)

// ProfileName is the LLM profile used for translation requests.
const ProfileName = "translate"

const systemPrompt = "You are a professional narrator's translator. " +
	"Translate faithfully into the target language for voice narration. " +
	"Preserve line breaks and sentence boundaries. No explanations."

// FailedError reports that the translation collaborator could not produce a
// result. The pipeline treats this as fatal; it never falls back to
// untranslated text silently.
type FailedError struct {
	Target string
	Err    error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("translation to %s failed: %v", e.Target, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Decider picks between passing text through and translating it.
type Decider struct {
	provider llm.Provider
}

// NewDecider creates a Decider backed by the given text-generation provider.
func NewDecider(p llm.Provider) *Decider {
	return &Decider{provider: p}
}

// Decide returns text ready for synthesis in the target language.
//
// The target is normalized through the alias table, then compared against
// the detected language hint of the input. A match means the text is
// already in the target language: it is returned unchanged with no remote
// call. Otherwise the provider is asked for a translation; failure surfaces
// as *FailedError.
func (d *Decider) Decide(ctx context.Context, text, targetLanguage string) (string, error) {
	target := textprep.NormalizeLanguage(targetLanguage)
	hint := textprep.DetectHint(text)

	if hint == target {
		return text, nil
	}

	prompt := llm.Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf("Target language: %s\n\nText:\n%s", target, text),
	}

	translated, err := d.provider.GenerateText(ctx, ProfileName, prompt)
	if err != nil {
		return "", &FailedError{Target: target, Err: err}
	}

	return strings.TrimSpace(translated), nil
}
