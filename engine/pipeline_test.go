package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voxpulse/voxpulse/keyword"
	"github.com/voxpulse/voxpulse/logger"
	"github.com/voxpulse/voxpulse/stt"
	"github.com/voxpulse/voxpulse/trigger"
)

// fakeStreamer emits canned blocks in real-time-ish cadence, then either
// idles until cancelled or fails, depending on failAfter.
type fakeStreamer struct {
	blocks    [][]float32
	failAfter error
}

func (f *fakeStreamer) Initialize() error { return nil }
func (f *fakeStreamer) Terminate()        {}
func (f *fakeStreamer) Open() error       { return nil }
func (f *fakeStreamer) Close() error      { return nil }

func (f *fakeStreamer) StartCapture(ctx context.Context, out chan<- []float32) error {
	for _, block := range f.blocks {
		select {
		case out <- block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.failAfter != nil {
		return f.failAfter
	}
	<-ctx.Done()
	return ctx.Err()
}

// scriptedTranscriber returns queued results, one per window.
type scriptedTranscriber struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	text string
	err  error
}

func (s *scriptedTranscriber) Transcribe(_ context.Context, _ []float32, _ int) ([]stt.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return nil, nil
	}
	r := s.results[0]
	s.results = s.results[1:]
	if r.err != nil {
		return nil, r.err
	}
	if r.text == "" {
		return nil, nil
	}
	return []stt.Segment{{Text: r.text}}, nil
}

func (s *scriptedTranscriber) Close() error { return nil }

func (s *scriptedTranscriber) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordedSend struct {
	address string
	value   any
	at      time.Time
}

type recordingSink struct {
	mu    sync.Mutex
	sends []recordedSend
}

func (r *recordingSink) Send(address string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, recordedSend{address, value, time.Now()})
	return nil
}

func (r *recordingSink) snapshot() []recordedSend {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedSend, len(r.sends))
	copy(out, r.sends)
	return out
}

func (r *recordingSink) waitFor(t *testing.T, n int, timeout time.Duration) []recordedSend {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sends, have %v", n, r.snapshot())
	return nil
}

func testConfig() Config {
	return Config{
		SampleRate:    100,
		BlockSize:     10,
		WindowSeconds: 0.1, // exactly one block per window
		Overlap:       0.5,
		QueueBlocks:   16,
		JoinTimeout:   time.Second,
	}
}

func stopTable(t *testing.T) *keyword.Detector {
	t.Helper()
	table, err := keyword.NewTable(map[string]string{
		"stop": "/k/stop",
		"halt": "/k/stop",
	})
	if err != nil {
		t.Fatal(err)
	}
	return keyword.NewDetector(table)
}

func newTestPipeline(t *testing.T, streamer *fakeStreamer, transcriber *scriptedTranscriber, sink *recordingSink, delay time.Duration) *Pipeline {
	t.Helper()
	log := logger.New(true)
	sched := trigger.NewScheduler(sink, delay, "", log)
	p, err := New(testConfig(), streamer, transcriber, stopTable(t), sched, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func block(n int) []float32 {
	return make([]float32, n)
}

func TestPipelineEndToEnd(t *testing.T) {
	streamer := &fakeStreamer{blocks: [][]float32{block(10)}}
	transcriber := &scriptedTranscriber{results: []scriptedResult{{text: "please halt now"}}}
	sink := &recordingSink{}
	const delay = 20 * time.Millisecond

	p := newTestPipeline(t, streamer, transcriber, sink, delay)

	start := time.Now()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	got := sink.waitFor(t, 3, 2*time.Second)

	// One synchronous ON, the transcript text, then one OFF after the delay.
	if got[0].address != "/k/stop" || got[0].value != 1.0 {
		t.Errorf("first send = %v, want ON /k/stop", got[0])
	}
	if got[1].address != trigger.DefaultTextAddress || got[1].value != "please halt now" {
		t.Errorf("second send = %v, want transcript text", got[1])
	}
	if got[2].address != "/k/stop" || got[2].value != 0.0 {
		t.Errorf("third send = %v, want OFF /k/stop", got[2])
	}
	if got[2].at.Sub(start) < delay {
		t.Errorf("OFF fired too early: %v < %v", got[2].at.Sub(start), delay)
	}

	ons := 0
	for _, s := range got {
		if s.address == "/k/stop" && s.value == 1.0 {
			ons++
		}
	}
	if ons != 1 {
		t.Errorf("got %d ONs for /k/stop, want exactly 1", ons)
	}
}

func TestPipelineStopMidAccumulation(t *testing.T) {
	// Half a window of audio: nothing may ever be emitted.
	streamer := &fakeStreamer{blocks: [][]float32{block(5)}}
	transcriber := &scriptedTranscriber{results: []scriptedResult{{text: "should never appear"}}}
	sink := &recordingSink{}

	p := newTestPipeline(t, streamer, transcriber, sink, 10*time.Millisecond)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	begin := time.Now()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > testConfig().JoinTimeout+500*time.Millisecond {
		t.Errorf("Stop took %v, join timeout is %v", elapsed, testConfig().JoinTimeout)
	}

	if transcriber.callCount() != 0 {
		t.Errorf("incomplete window was transcribed %d times", transcriber.callCount())
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("events emitted for incomplete window: %v", got)
	}
}

func TestPipelineLifecycleStates(t *testing.T) {
	streamer := &fakeStreamer{}
	transcriber := &scriptedTranscriber{}
	sink := &recordingSink{}

	p := newTestPipeline(t, streamer, transcriber, sink, 10*time.Millisecond)

	if p.State() != "idle" {
		t.Fatalf("initial state = %s, want idle", p.State())
	}
	if err := p.Stop(); err == nil {
		t.Error("Stop from idle should fail")
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.State() != "running" {
		t.Errorf("state after Start = %s, want running", p.State())
	}
	if err := p.Start(context.Background()); err == nil {
		t.Error("double Start should fail")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != "idle" {
		t.Errorf("state after Stop = %s, want idle", p.State())
	}
}

func TestPipelineSurvivesTransientTranscriptionError(t *testing.T) {
	streamer := &fakeStreamer{blocks: [][]float32{block(10), block(10), block(10)}}
	transcriber := &scriptedTranscriber{results: []scriptedResult{
		{err: errors.New("engine hiccup")},
		{text: "stop it"},
	}}
	sink := &recordingSink{}

	p := newTestPipeline(t, streamer, transcriber, sink, 10*time.Millisecond)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	got := sink.waitFor(t, 2, 2*time.Second)
	if got[0].address != "/k/stop" || got[0].value != 1.0 {
		t.Errorf("pipeline did not recover after error: %v", got)
	}
}

func TestPipelineDeviceFailureWindsDown(t *testing.T) {
	streamer := &fakeStreamer{failAfter: errors.New("device disconnected")}
	transcriber := &scriptedTranscriber{}
	sink := &recordingSink{}

	p := newTestPipeline(t, streamer, transcriber, sink, 10*time.Millisecond)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	begin := time.Now()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop after device failure: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Errorf("Stop after device failure took %v", elapsed)
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("events emitted after device failure: %v", got)
	}
}
