package tts

import (
	"errors"
	"testing"
)

func TestNewParams_SpeedBounds(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		wantErr bool
	}{
		{"lower bound inclusive", 0.25, false},
		{"upper bound inclusive", 4.0, false},
		{"normal speed", 1.0, false},
		{"too slow", 0.2, true},
		{"too fast", 5.0, true},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParams("tts-1", "alloy", "mp3", tt.speed, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewParams(speed=%v) error = %v, wantErr %v", tt.speed, err, tt.wantErr)
			}
			if tt.wantErr {
				var pe *ParamError
				if !errors.As(err, &pe) {
					t.Errorf("expected *ParamError, got %T", err)
				} else if pe.Name != "speed" {
					t.Errorf("expected speed parameter flagged, got %s", pe.Name)
				}
			}
		})
	}
}

func TestNewParams_Format(t *testing.T) {
	for _, format := range []string{"mp3", "wav", "opus", "aac"} {
		if _, err := NewParams("tts-1", "alloy", format, 1.0, ""); err != nil {
			t.Errorf("expected format %q to be accepted: %v", format, err)
		}
	}

	_, err := NewParams("tts-1", "alloy", "flac", 1.0, "")
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Name != "format" {
		t.Errorf("expected format ParamError, got %v", err)
	}
}

func TestNewParams_RequiredFields(t *testing.T) {
	if _, err := NewParams("tts-1", "", "mp3", 1.0, ""); err == nil {
		t.Error("expected error for empty voice")
	}
	if _, err := NewParams("", "alloy", "mp3", 1.0, ""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestIsLegacyModel(t *testing.T) {
	if !IsLegacyModel("tts-1") || !IsLegacyModel("tts-1-hd") {
		t.Error("tts-1 and tts-1-hd are legacy models")
	}
	if IsLegacyModel("gpt-4o-mini-tts") {
		t.Error("gpt-4o-mini-tts is not a legacy model")
	}
}

func TestIsKnownModel(t *testing.T) {
	for _, m := range KnownModels {
		if !IsKnownModel(m) {
			t.Errorf("expected %q to be known", m)
		}
	}
	if IsKnownModel("tts-99") {
		t.Error("tts-99 should not be known")
	}
}
