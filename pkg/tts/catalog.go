package tts

// Static reference catalogs. These list names known to the service at large;
// availability on a given account is discovered with the voice probe, never
// assumed. None of these tables are mutated at runtime.

// KnownVoices is the curated list of common voice names, in probe order.
var KnownVoices = []string{
	"alloy", "verse", "coral", "onyx", "shimmer",
	"fable", "echo", "nova", "sage", "ash", "ballad",
}

// KnownModels lists the recognized TTS model identifiers.
var KnownModels = []string{"tts-1", "tts-1-hd", "gpt-4o-mini-tts"}

// legacyModels name the model identifiers that reject the instructions
// parameter; providers silently drop instructions for these.
var legacyModels = map[string]bool{
	"tts-1":    true,
	"tts-1-hd": true,
}

// knownFormats is the closed set of recognized audio output formats.
var knownFormats = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"opus": true,
	"aac":  true,
}

// IsKnownFormat reports whether format is a recognized audio output format.
func IsKnownFormat(format string) bool {
	return knownFormats[format]
}

// IsLegacyModel reports whether the model rejects the instructions parameter.
func IsLegacyModel(model string) bool {
	return legacyModels[model]
}

// IsKnownModel reports whether model is a recognized TTS model identifier.
func IsKnownModel(model string) bool {
	for _, m := range KnownModels {
		if m == model {
			return true
		}
	}
	return false
}
