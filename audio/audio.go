package audio

import "context"

// Config holds frame-source parameters.
type Config struct {
	SampleRate float64
	BlockSize  int
	Channels   int
	// DeviceID selects an input device by enumeration index; negative means
	// the system default.
	DeviceID int
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		BlockSize:  1024,
		Channels:   1,
		DeviceID:   -1,
	}
}

// Streamer defines the interface for audio frame sources.
type Streamer interface {
	// Initialize initializes the audio system.
	Initialize() error

	// Terminate terminates the audio system.
	Terminate()

	// Open opens the stream with configured parameters.
	Open() error

	// Close closes the stream.
	Close() error

	// StartCapture captures fixed-size mono sample blocks into the channel
	// until the context is cancelled or the stream ends. A nil return means
	// the source ran dry normally; any other error is a device failure.
	StartCapture(ctx context.Context, blocks chan<- []float32) error
}
