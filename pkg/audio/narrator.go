package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Synthesizer produces raw speech audio for a line of narration. A nil
// or empty result means no audio is available.
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

const speechTimeout = 45 * time.Second

// Narrator turns narrative text into spoken audio. Speak is
// fire-and-forget: it never blocks the caller, and every failure is
// swallowed after logging. The sink is created lazily on first use and
// reused for the rest of the session.
type Narrator struct {
	synth   Synthesizer
	newSink func() (Sink, error)
	logger  *slog.Logger

	sinkOnce sync.Once
	sink     Sink

	mu    sync.Mutex
	muted bool
}

func NewNarrator(synth Synthesizer, newSink func() (Sink, error), logger *slog.Logger) *Narrator {
	return &Narrator{
		synth:   synth,
		newSink: newSink,
		logger:  logger,
	}
}

// SetMuted toggles narration. While muted, Speak is a silent no-op.
func (n *Narrator) SetMuted(muted bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = muted
}

func (n *Narrator) isMuted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.muted
}

// Speak synthesizes and plays one line of narration in the background.
func (n *Narrator) Speak(text string) {
	if text == "" || n.synth == nil || n.isMuted() {
		return
	}
	go n.speak(text)
}

func (n *Narrator) speak(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), speechTimeout)
	defer cancel()

	raw, err := n.synth.SynthesizeSpeech(ctx, text)
	if err != nil {
		n.logger.Debug("Speech synthesis failed", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}

	n.sinkOnce.Do(func() {
		sink, err := n.newSink()
		if err != nil {
			n.logger.Warn("Audio sink unavailable, narration disabled", "error", err)
			sink = DiscardSink{}
		}
		n.sink = sink
	})

	samples := DecodePCM16(raw)
	if err := n.sink.Play(samples); err != nil {
		n.logger.Debug("Narration playback failed", "error", err)
	}
}
