// Package tts synthesizes interviewer utterances into playable audio.
package tts

import (
	"bytes"
	"context"
	"encoding/binary"
)

// Audio is a complete, playable clip.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Empty reports whether there is nothing to play.
func (a Audio) Empty() bool { return len(a.Data) == 0 }

// Nop is used when speech output is disabled.
type Nop struct{}

func (Nop) Synthesize(context.Context, string, string) (Audio, error) { return Audio{}, nil }

// wavFromPCM16 wraps mono little-endian PCM16 samples in a RIFF/WAVE header.
func wavFromPCM16(pcm []byte, sampleRate int) []byte {
	const channels, bitsPerSample = 1, 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	var b bytes.Buffer
	b.Grow(44 + len(pcm))
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	_ = binary.Write(&b, binary.LittleEndian, uint16(bitsPerSample))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}
