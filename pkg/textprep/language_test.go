package textprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "english"},
		{"eng", "english"},
		{"es", "spanish"},
		{"ES", "spanish"},
		{"spa", "spanish"},
		{"castellano", "spanish"},
		{"english", "english"},
		{"  Spanish  ", "spanish"},
		{"xx", "xx"},
		{" FR ", "fr"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeLanguage(tt.input), "input %q", tt.input)
	}
}

func TestDetectHint(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"no markers", "cafe", "english"},
		{"one marker is not enough", "café", "english"},
		{"two markers", "café niño", "spanish"},
		{"inverted punctuation counts", "¿Qué?", "spanish"},
		{"uppercase accents count via lowercasing", "ÁÉ", "spanish"},
		{"empty text", "", "english"},
		{"plain english prose", "The quick brown fox jumps over the lazy dog.", "english"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectHint(tt.text))
		})
	}
}
