package traverso

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Wav encodes a stereo buffer as a .wav file at rate, with float32 samples or,
// if pcm16 is set, clamped signed 16-bit samples.
func Wav(buffer AudioBuffer, rate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WriteWav(buf, buffer, rate, pcm16); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWav is Wav writing to w.
func WriteWav(w io.Writer, buffer AudioBuffer, rate int, pcm16 bool) error {
	if err := writeWavHeader(w, len(buffer), rate, pcm16); err != nil {
		return fmt.Errorf("could not write wav header: %w", err)
	}
	return writeSamples(w, buffer, pcm16)
}

// Raw encodes a buffer as headerless little-endian float32 or 16-bit samples,
// the format RawFileProvider reads back when pcm16 is false.
func Raw(buffer AudioBuffer, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeSamples(buf, buffer, pcm16); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSamples(w io.Writer, data AudioBuffer, pcm16 bool) error {
	var err error
	if pcm16 {
		int16data := make([]int16, len(data))
		for i, v := range data {
			int16data[i] = int16(max(min(float64(v)*math.MaxInt16, math.MaxInt16), math.MinInt16))
		}
		err = binary.Write(w, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(w, binary.LittleEndian, []float32(data))
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return nil
}

type wavHeader struct {
	Riff          [4]byte
	ChunkSize     uint32
	Wave          [4]byte
	Fmt           [4]byte
	FmtChunkSize  uint32
	WaveFormat    uint16
	NumChannels   uint16
	SampleRate    uint32
	AvgBytes      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// writeWavHeader writes the header of a stereo .wav file holding samples
// values (L + R count separately). Float files carry the extension size and
// fact chunk that the IEEE float format requires.
// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
func writeWavHeader(w io.Writer, samples, rate int, pcm16 bool) error {
	h := wavHeader{
		Riff:         [4]byte{'R', 'I', 'F', 'F'},
		Wave:         [4]byte{'W', 'A', 'V', 'E'},
		Fmt:          [4]byte{'f', 'm', 't', ' '},
		FmtChunkSize: 16,
		WaveFormat:   1, // PCM
		NumChannels:  NumChannels,
		SampleRate:   uint32(rate),
	}
	bytesPerSample := 2
	h.ChunkSize = uint32(36 + bytesPerSample*samples)
	if !pcm16 {
		bytesPerSample = 4
		h.ChunkSize = uint32(50 + bytesPerSample*samples)
		h.FmtChunkSize = 18
		h.WaveFormat = 3 // IEEE float
	}
	h.AvgBytes = uint32(rate * NumChannels * bytesPerSample)
	h.BlockAlign = uint16(NumChannels * bytesPerSample)
	h.BitsPerSample = uint16(8 * bytesPerSample)
	parts := []any{h}
	if !pcm16 {
		parts = append(parts,
			uint16(0), // size of extension
			[4]byte{'f', 'a', 'c', 't'}, uint32(4), uint32(samples/NumChannels))
	}
	parts = append(parts, [4]byte{'d', 'a', 't', 'a'}, uint32(bytesPerSample*samples))
	for _, p := range parts {
		if err := binary.Write(w, binary.LittleEndian, p); err != nil {
			return err
		}
	}
	return nil
}
