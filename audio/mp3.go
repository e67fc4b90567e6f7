package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// FileStreamer plays an MP3 file into the pipeline as if it were a live
// device: decoded to mono, resampled to the configured rate, and paced in
// real time block by block. Capture ends normally at end of file.
type FileStreamer struct {
	path    string
	config  Config
	samples []float32
}

var _ Streamer = (*FileStreamer)(nil)

func NewFileStreamer(path string, config Config) *FileStreamer {
	return &FileStreamer{path: path, config: config}
}

func (f *FileStreamer) Initialize() error { return nil }

func (f *FileStreamer) Terminate() {}

func (f *FileStreamer) Open() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", f.path, err)
	}

	mono, err := decodeMono(decoder)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	f.samples = resampleLinear(mono, float64(decoder.SampleRate()), f.config.SampleRate)
	return nil
}

func (f *FileStreamer) Close() error {
	f.samples = nil
	return nil
}

func (f *FileStreamer) StartCapture(ctx context.Context, blocks chan<- []float32) error {
	if f.samples == nil {
		return errors.New("stream not opened")
	}

	interval := time.Duration(float64(f.config.BlockSize) / f.config.SampleRate * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for off := 0; off < len(f.samples); off += f.config.BlockSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		end := off + f.config.BlockSize
		if end > len(f.samples) {
			end = len(f.samples)
		}
		block := make([]float32, f.config.BlockSize)
		copy(block, f.samples[off:end]) // zero-padded tail block

		select {
		case blocks <- block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// decodeMono reads the decoder's 16-bit stereo output and averages the
// channels.
func decodeMono(r io.Reader) ([]float32, error) {
	var mono []float32
	buf := make([]byte, 4096)
	var carry []byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			frames := len(data) / 4
			for i := 0; i < frames; i++ {
				left := int16(binary.LittleEndian.Uint16(data[i*4:]))
				right := int16(binary.LittleEndian.Uint16(data[i*4+2:]))
				mono = append(mono, (float32(left)+float32(right))/2/32768)
			}
			carry = append(carry[:0], data[frames*4:]...)
		}
		if err == io.EOF {
			return mono, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// resampleLinear converts samples from one rate to another with linear
// interpolation; crude but plenty for speech recognition input.
func resampleLinear(in []float32, from, to float64) []float32 {
	if len(in) == 0 || from == to {
		return in
	}
	outLen := int(float64(len(in)) * to / from)
	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * from / to
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
