package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioStreamer captures live audio from an input device.
type PortAudioStreamer struct {
	stream *portaudio.Stream
	buf    []float32
	config Config
}

var _ Streamer = (*PortAudioStreamer)(nil)

func NewPortAudioStreamer(config Config) *PortAudioStreamer {
	return &PortAudioStreamer{
		config: config,
		buf:    make([]float32, config.BlockSize),
	}
}

func (a *PortAudioStreamer) Initialize() error {
	return portaudio.Initialize()
}

func (a *PortAudioStreamer) Terminate() {
	portaudio.Terminate()
}

func (a *PortAudioStreamer) Open() error {
	if a.config.DeviceID < 0 {
		stream, err := portaudio.OpenDefaultStream(
			a.config.Channels,
			0,
			a.config.SampleRate,
			a.config.BlockSize,
			a.buf,
		)
		if err != nil {
			return fmt.Errorf("failed to open default input stream: %w", err)
		}
		a.stream = stream
		return nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if a.config.DeviceID >= len(devices) {
		return fmt.Errorf("input device %d does not exist", a.config.DeviceID)
	}
	device := devices[a.config.DeviceID]
	if device.MaxInputChannels < a.config.Channels {
		return fmt.Errorf("device %q has no input channels", device.Name)
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = a.config.Channels
	params.SampleRate = a.config.SampleRate
	params.FramesPerBuffer = a.config.BlockSize

	stream, err := portaudio.OpenStream(params, a.buf)
	if err != nil {
		return fmt.Errorf("failed to open stream on %q: %w", device.Name, err)
	}
	a.stream = stream
	return nil
}

func (a *PortAudioStreamer) Close() error {
	if a.stream != nil {
		return a.stream.Close()
	}
	return nil
}

func (a *PortAudioStreamer) StartCapture(ctx context.Context, blocks chan<- []float32) error {
	if a.stream == nil {
		return errors.New("stream not opened")
	}

	if err := a.stream.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	defer a.stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := a.stream.Read(); err != nil {
			// Overflow means the host dropped input while we were busy;
			// skip the block and keep capturing. Anything else is fatal.
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		block := make([]float32, len(a.buf))
		copy(block, a.buf)

		select {
		case blocks <- block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
