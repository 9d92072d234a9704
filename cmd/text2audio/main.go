// Command text2audio generates a narrated voice track from a text or
// Markdown file using an OpenAI-compatible TTS endpoint, optionally
// translating the text into a target spoken language first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"text2audio/pkg/config"
	"text2audio/pkg/db"
	"text2audio/pkg/llm"
	"text2audio/pkg/llm/failover"
	"text2audio/pkg/llm/gemini"
	llmopenai "text2audio/pkg/llm/openai"
	"text2audio/pkg/logging"
	"text2audio/pkg/narrate"
	"text2audio/pkg/playback"
	"text2audio/pkg/probe"
	"text2audio/pkg/request"
	"text2audio/pkg/store"
	"text2audio/pkg/tracker"
	"text2audio/pkg/translate"
	"text2audio/pkg/tts"
	ttsopenai "text2audio/pkg/tts/openai"
)

type cliFlags struct {
	configPath   string
	promptFile   string
	audioFile    string
	audioFormat  string
	language     string
	voice        string
	ttsModel     string
	textModel    string
	speed        float64
	instructions string
	noTranslate  bool
	listVoices   bool
	probeVoices  bool
	playAudio    bool
	history      int
}

func parseFlags() *cliFlags {
	f := &cliFlags{}
	flag.StringVar(&f.configPath, "config", "configs/text2audio.yaml", "Path to the config file (created with defaults if missing)")
	flag.StringVar(&f.promptFile, "prompt-file", "", "Text/Markdown file with the narration")
	flag.StringVar(&f.audioFile, "audio-file", "", "Output audio file path (e.g. voice.mp3)")
	flag.StringVar(&f.audioFormat, "audio-format", "", "Audio format (mp3|wav|opus|aac)")
	flag.StringVar(&f.language, "language", "", "Target spoken language (e.g. 'english', 'spanish')")
	flag.StringVar(&f.voice, "voice", "", "TTS voice name (e.g. alloy, verse, ...)")
	flag.StringVar(&f.ttsModel, "tts-model", "", "TTS model (tts-1|tts-1-hd|gpt-4o-mini-tts)")
	flag.StringVar(&f.textModel, "text-model", "", "Text model for translation (e.g. gpt-5, gpt-5-mini)")
	flag.Float64Var(&f.speed, "speed", 0, "Speech speed (0.25-4.0)")
	flag.StringVar(&f.instructions, "instructions", "", "Additional voice instructions (dropped for tts-1/tts-1-hd)")
	flag.BoolVar(&f.noTranslate, "no-translate", false, "Do not translate even if target language differs")
	flag.BoolVar(&f.listVoices, "list-voices", false, "Print the known voice names and exit")
	flag.BoolVar(&f.probeVoices, "probe-voices", false, "Synthesize a short sample per known voice to discover availability")
	flag.BoolVar(&f.playAudio, "play-audio", false, "Play the saved audio after synthesis (macOS/Linux only)")
	flag.IntVar(&f.history, "history", 0, "Print the N most recent narration runs and exit")
	flag.Parse()
	return f
}

func main() {
	// A .env file next to the binary may carry OPENAI_API_KEY etc.
	_ = godotenv.Load()

	flags := parseFlags()

	if flags.listVoices {
		fmt.Println("Known voice names (availability may vary by account):")
		for _, v := range tts.KnownVoices {
			fmt.Printf(" - %s\n", v)
		}
		return
	}

	if err := run(context.Background(), flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *cliFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg, flags)

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()
	tts.SetLogPath(cfg.Log.TTS.Path)

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.NewSQLiteStore(dbConn)
	defer st.Close()

	if retention := time.Duration(cfg.DB.Retention); retention > 0 {
		if err := dbConn.PruneHistory(retention); err != nil {
			slog.Warn("Failed to prune narration history", "error", err)
		}
	}

	if flags.history > 0 {
		return printHistory(ctx, st, flags.history)
	}

	// Parameter validation happens before any remote call.
	params, err := tts.NewParams(cfg.TTS.Model, cfg.TTS.Voice, cfg.TTS.Format, cfg.TTS.Speed, cfg.TTS.Instructions)
	if err != nil {
		return err
	}

	if cfg.LLM.OpenAI.Key == "" {
		return errors.New("missing OPENAI_API_KEY (set it in your environment, .env, or config file)")
	}

	tr := tracker.New()
	ttsProv := ttsopenai.NewProvider(cfg.LLM.OpenAI.Key, cfg.LLM.OpenAI.BaseURL, params, tr)

	if flags.probeVoices {
		return runProbe(ctx, ttsProv, st, tr, params.Model)
	}

	if flags.promptFile == "" || flags.audioFile == "" {
		return errors.New("-prompt-file and -audio-file are required unless using -list-voices, -probe-voices, or -history")
	}
	if _, err := os.Stat(flags.promptFile); err != nil {
		return fmt.Errorf("prompt file not found: %s", flags.promptFile)
	}
	if dir := filepath.Dir(flags.audioFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	llmProv, err := buildLLMChain(cfg, tr)
	if err != nil {
		return err
	}

	pipeline := narrate.New(translate.NewDecider(llmProv), ttsProv, params, st)
	result, err := pipeline.Run(ctx, flags.promptFile, flags.audioFile, narrate.Options{
		TargetLanguage: cfg.Narrate.TargetLanguage,
		NoTranslate:    cfg.Narrate.NoTranslate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Saved narration to: %s\n", result.OutputFile)

	if flags.playAudio {
		if code, err := playback.Play(ctx, result.OutputFile); err != nil {
			if errors.Is(err, playback.ErrNoPlayer) {
				fmt.Println("No suitable audio player found for your OS. Skipping playback.")
				return nil
			}
			return fmt.Errorf("playback failed (exit %d): %w", code, err)
		}
	}
	return nil
}

// applyFlagOverrides lets explicit flags win over the config file.
func applyFlagOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.audioFormat != "" {
		cfg.TTS.Format = flags.audioFormat
	}
	if flags.voice != "" {
		cfg.TTS.Voice = flags.voice
	}
	if flags.ttsModel != "" {
		cfg.TTS.Model = flags.ttsModel
	}
	if flags.speed != 0 {
		cfg.TTS.Speed = flags.speed
	}
	if flags.instructions != "" {
		cfg.TTS.Instructions = flags.instructions
	}
	if flags.textModel != "" {
		if cfg.LLM.OpenAI.Profiles == nil {
			cfg.LLM.OpenAI.Profiles = map[string]string{}
		}
		cfg.LLM.OpenAI.Profiles[translate.ProfileName] = flags.textModel
	}
	if flags.language != "" {
		cfg.Narrate.TargetLanguage = flags.language
	}
	if flags.noTranslate {
		cfg.Narrate.NoTranslate = true
	}
}

// buildLLMChain assembles the text-generation fallback chain from config.
func buildLLMChain(cfg *config.Config, tr *tracker.Tracker) (llm.Provider, error) {
	rc := request.New(tr, request.ClientConfig{
		Timeout:   time.Duration(cfg.Request.Timeout),
		Retries:   cfg.Request.Retries,
		BaseDelay: time.Duration(cfg.Request.Backoff.BaseDelay),
	})

	var providers []llm.Provider
	var names []string
	for _, name := range cfg.LLM.Chain {
		switch name {
		case "openai":
			p, err := llmopenai.NewClient(cfg.LLM.OpenAI, "https://api.openai.com/v1", rc)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize openai provider: %w", err)
			}
			providers = append(providers, p)
			names = append(names, name)
		case "gemini":
			p, err := gemini.NewClient(cfg.LLM.Gemini, tr)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize gemini provider: %w", err)
			}
			providers = append(providers, p)
			names = append(names, name)
		default:
			return nil, fmt.Errorf("unknown LLM provider %q in chain", name)
		}
	}

	return failover.New(providers, names)
}

func runProbe(ctx context.Context, p tts.Provider, st store.Store, tr *tracker.Tracker, model string) error {
	dir, err := os.MkdirTemp("", "tts_voices_")
	if err != nil {
		return fmt.Errorf("failed to create probe directory: %w", err)
	}
	fmt.Printf("Probing voices into: %s\n", dir)

	results := probe.Run(ctx, p, tts.KnownVoices, dir)
	probe.LogResults(results)
	report := probe.Partition(results)

	fmt.Println("\nAvailable voices (succeeded):")
	for _, v := range report.Succeeded {
		fmt.Printf("  - %s\n", v)
	}
	if len(report.Failed) > 0 {
		fmt.Println("\nFailed voices (diagnostic):")
		for _, f := range report.Failed {
			fmt.Printf("  - %s: %s\n", f.Voice, f.Message)
		}
	}

	for provider, stats := range tr.Snapshot() {
		slog.Info("Probe: API totals", "provider", provider, "success", stats.APISuccess, "failures", stats.APIFailures)
	}

	if err := st.RecordProbeRun(ctx, model, report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record probe run: %v\n", err)
	}
	return nil
}

func printHistory(ctx context.Context, st store.Store, limit int) error {
	recent, err := st.RecentNarrations(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(recent) == 0 {
		fmt.Println("No narration history yet.")
	}
	for _, n := range recent {
		translated := "as-is"
		if n.Translated {
			translated = "translated"
		}
		fmt.Printf("%s  %-28s -> %-28s  %s/%s  %s (%s, %d chars, %s)\n",
			n.CreatedAt.Format("2006-01-02 15:04"),
			filepath.Base(n.SourceFile), filepath.Base(n.OutputFile),
			n.TTSModel, n.Voice, n.TargetLanguage, translated, n.Chars,
			n.Duration.Round(time.Second))
	}

	probes, err := st.RecentProbeRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read probe history: %w", err)
	}
	if len(probes) > 0 {
		fmt.Println("\nRecent voice probes:")
		for _, r := range probes {
			fmt.Printf("%s  %s: %d/%d voices ok\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.TTSModel, r.VoicesOK, r.VoicesTotal)
			for _, f := range r.Failures {
				fmt.Printf("    - %s: %s\n", f.Voice, f.Message)
			}
		}
	}
	return nil
}
