package stt

import (
	"context"
	"sync"
)

// Segment is one piece of recognized text from a window.
type Segment struct {
	Text string
}

// Transcriber converts one audio window into text segments. A call may take
// significant wall-clock time and may return zero segments for silence.
// Implementations are not required to be reentrant; wrap with Serialize when
// one instance is shared.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error)

	// Close releases the underlying engine or connection.
	Close() error
}

// Serialized guards a non-reentrant Transcriber with mutual exclusion.
type Serialized struct {
	mu sync.Mutex
	t  Transcriber
}

func Serialize(t Transcriber) *Serialized {
	return &Serialized{t: t}
}

func (s *Serialized) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Transcribe(ctx, samples, sampleRate)
}

func (s *Serialized) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Close()
}
