package audio

import "encoding/binary"

// SampleRate is the fixed rate of synthesized narration audio. The
// speech service always returns 16-bit little-endian mono PCM at 24kHz.
const SampleRate = 24000

// DecodePCM16 converts raw 16-bit little-endian PCM bytes into
// normalized float samples in [-1.0, 1.0]. An odd trailing byte is
// padded with a zero byte rather than dropped.
func DecodePCM16(raw []byte) []float32 {
	if len(raw) == 0 {
		return nil
	}
	if len(raw)%2 != 0 {
		raw = append(raw, 0)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768.0
	}
	return samples
}

// EncodePCM16 converts normalized float samples back to 16-bit
// little-endian PCM. Samples outside [-1.0, 1.0] are clipped.
func EncodePCM16(samples []float32) []byte {
	raw := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1.0 {
			f = 1.0
		} else if f < -1.0 {
			f = -1.0
		}
		s := int16(f * 32767.0)
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return raw
}
