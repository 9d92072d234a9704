package tts

import (
	"fmt"
)

const (
	// MinSpeed and MaxSpeed bound the synthesis speed multiplier.
	MinSpeed = 0.25
	MaxSpeed = 4.0
)

// ParamError reports an invalid synthesis parameter before any remote call
// is made.
type ParamError struct {
	Name  string
	Value any
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Name, e.Value)
}

// Params holds validated synthesis parameters.
type Params struct {
	Model        string
	Voice        string
	Format       string
	Speed        float64
	Instructions string
}

// NewParams validates and returns synthesis parameters.
// Speed must be within [MinSpeed, MaxSpeed] (inclusive); the format must be
// one of the recognized output formats. Instructions are accepted for any
// model here; providers drop them for models that do not support them.
func NewParams(model, voice, format string, speed float64, instructions string) (Params, error) {
	if speed < MinSpeed || speed > MaxSpeed {
		return Params{}, &ParamError{Name: "speed", Value: speed}
	}
	if !IsKnownFormat(format) {
		return Params{}, &ParamError{Name: "format", Value: format}
	}
	if voice == "" {
		return Params{}, &ParamError{Name: "voice", Value: voice}
	}
	if model == "" {
		return Params{}, &ParamError{Name: "model", Value: model}
	}

	return Params{
		Model:        model,
		Voice:        voice,
		Format:       format,
		Speed:        speed,
		Instructions: instructions,
	}, nil
}
