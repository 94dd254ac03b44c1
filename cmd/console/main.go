package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hollowayink/wayfarer/internal/config"
	"github.com/hollowayink/wayfarer/internal/engine"
	"github.com/hollowayink/wayfarer/internal/services"
	"github.com/hollowayink/wayfarer/pkg/audio"
)

// The console runs the whole engine in-process: no API server needed,
// just a GEMINI_API_KEY (or PROVIDER=mock for a dry run).
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// BubbleTea owns the terminal, so logs go to a file or nowhere.
	log := consoleLogger(cfg)

	var narrative services.NarrativeService
	var media services.MediaService
	switch cfg.Provider {
	case "gemini":
		gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.NarrativeModel, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize Gemini: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		narrative = gemini
		media = services.NewGeminiMediaService(cfg.GeminiAPIKey, log)
	case "mock":
		narrative = services.NewMockNarrativeService()
		media = services.NewMockMediaService()
	}

	narrator := audio.NewNarrator(media, narrationSink(cfg), log)

	policy := engine.NewVisualPolicy(media, log)
	o := engine.NewOrchestrator(narrative, policy, narrator, log)

	p := tea.NewProgram(NewConsoleUI(o, narrator),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// narrationSink picks where synthesized narration goes. Without a
// configured directory, speech is synthesized and discarded, which
// still exercises the full pipeline.
func narrationSink(cfg *config.Config) func() (audio.Sink, error) {
	return func() (audio.Sink, error) {
		if cfg.NarrationDir == "" {
			return audio.DiscardSink{}, nil
		}
		return audio.NewWAVSink(cfg.NarrationDir)
	}
}

func consoleLogger(cfg *config.Config) *slog.Logger {
	var w io.Writer = io.Discard
	if f, err := os.OpenFile("wayfarer-console.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		w = f
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
}
