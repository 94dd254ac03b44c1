package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink is the platform audio output. Narration is mono and always at
// SampleRate; sinks receive normalized float samples.
type Sink interface {
	Play(samples []float32) error
}

// DiscardSink drops all audio. Used by the API server and in tests,
// where there is no speaker to play through.
type DiscardSink struct{}

func (DiscardSink) Play([]float32) error { return nil }

// WAVSink writes each narration clip as a RIFF/WAVE file in a
// directory, for players that watch the directory or for sessions
// reviewed after the fact.
type WAVSink struct {
	Dir string
}

func NewWAVSink(dir string) (*WAVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create narration dir: %w", err)
	}
	return &WAVSink{Dir: dir}, nil
}

func (w *WAVSink) Play(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	name := fmt.Sprintf("narration-%d.wav", time.Now().UnixMilli())
	path := filepath.Join(w.Dir, name)

	data := EncodePCM16(samples)
	buf := make([]byte, 0, 44+len(data))
	buf = append(buf, wavHeader(len(data))...)
	buf = append(buf, data...)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write narration file: %w", err)
	}
	return nil
}

// wavHeader builds a canonical 44-byte header for 16-bit mono PCM at
// SampleRate.
func wavHeader(dataLen int) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := SampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], numChannels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}
