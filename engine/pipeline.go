// Package engine wires the capture, windowing, transcription, detection and
// event stages into one lifecycle-managed pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/voxpulse/voxpulse/audio"
	"github.com/voxpulse/voxpulse/keyword"
	"github.com/voxpulse/voxpulse/logger"
	"github.com/voxpulse/voxpulse/stt"
	"github.com/voxpulse/voxpulse/trigger"
	"github.com/voxpulse/voxpulse/window"
)

const (
	stateIdle     = "idle"
	stateRunning  = "running"
	stateStopping = "stopping"
)

// idle poll interval of the processing loop when no blocks are queued.
const drainPoll = 10 * time.Millisecond

// Config holds the pipeline parameters.
type Config struct {
	SampleRate    int
	BlockSize     int
	WindowSeconds float64
	Overlap       float64
	QueueBlocks   int
	JoinTimeout   time.Duration
}

// Pipeline runs two concurrent activities: a capture loop feeding sample
// blocks into a bounded drop-oldest queue, and a processing loop that
// accumulates windows, transcribes them, and dispatches trigger events.
type Pipeline struct {
	cfg         Config
	streamer    audio.Streamer
	transcriber stt.Transcriber
	detector    *keyword.Detector
	scheduler   *trigger.Scheduler
	log         *logger.Logger

	queue *window.Queue
	acc   *window.Accumulator

	machine *fsm.FSM

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates the configuration and assembles an idle pipeline. The
// transcriber is serialized internally; callers may hand over a shared
// instance.
func New(
	cfg Config,
	streamer audio.Streamer,
	transcriber stt.Transcriber,
	detector *keyword.Detector,
	scheduler *trigger.Scheduler,
	log *logger.Logger,
) (*Pipeline, error) {
	if cfg.SampleRate <= 0 || cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid audio parameters: rate=%d block=%d", cfg.SampleRate, cfg.BlockSize)
	}
	if cfg.WindowSeconds <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %v", cfg.WindowSeconds)
	}
	if cfg.QueueBlocks < 1 {
		cfg.QueueBlocks = 1
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 2 * time.Second
	}

	capacity := int(cfg.WindowSeconds * float64(cfg.SampleRate))
	acc, err := window.NewAccumulator(capacity, cfg.Overlap)
	if err != nil {
		return nil, err
	}

	machine := fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: "start", Src: []string{stateIdle}, Dst: stateRunning},
			{Name: "stop", Src: []string{stateRunning}, Dst: stateStopping},
			{Name: "stopped", Src: []string{stateStopping}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)

	return &Pipeline{
		cfg:         cfg,
		streamer:    streamer,
		transcriber: stt.Serialize(transcriber),
		detector:    detector,
		scheduler:   scheduler,
		log:         log,
		queue:       window.NewQueue(cfg.QueueBlocks, cfg.BlockSize),
		acc:         acc,
		machine:     machine,
	}, nil
}

// State reports the lifecycle state: idle, running or stopping.
func (p *Pipeline) State() string {
	return p.machine.Current()
}

// Start transitions idle→running: opens the device, starts the scheduler and
// spawns the capture and processing loops. On any setup failure nothing is
// left partially started.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.machine.Event(ctx, "start"); err != nil {
		return fmt.Errorf("cannot start from state %s: %w", p.machine.Current(), err)
	}

	if err := p.streamer.Initialize(); err != nil {
		p.machine.SetState(stateIdle)
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	if err := p.streamer.Open(); err != nil {
		p.streamer.Terminate()
		p.machine.SetState(stateIdle)
		return fmt.Errorf("failed to open audio stream: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.scheduler.Start()

	p.wg.Add(2)
	go p.captureLoop(runCtx, cancel)
	go p.processLoop(runCtx)

	p.log.Infow("pipeline started",
		"sample_rate", p.cfg.SampleRate,
		"block_size", p.cfg.BlockSize,
		"window_samples", p.acc.Capacity(),
	)
	return nil
}

// Stop transitions running→stopping→idle: cancels both loops, joins them
// with the configured timeout, flushes pending resets and closes the device.
// Events for a window still mid-accumulation are never emitted.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.machine.Event(context.Background(), "stop"); err != nil {
		return fmt.Errorf("cannot stop from state %s: %w", p.machine.Current(), err)
	}

	p.cancel()

	joined := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-time.After(p.cfg.JoinTimeout):
		p.log.Warnf("pipeline loops did not stop within %v", p.cfg.JoinTimeout)
	}

	p.scheduler.Stop()

	if err := p.streamer.Close(); err != nil {
		p.log.Warnf("failed to close audio stream: %v", err)
	}
	p.streamer.Terminate()

	if err := p.machine.Event(context.Background(), "stopped"); err != nil {
		p.machine.SetState(stateIdle)
	}
	p.log.Infow("pipeline stopped", "dropped_blocks", p.queue.Dropped())
	return nil
}

// captureLoop pushes device blocks into the hand-off queue. A device failure
// cancels the whole pipeline so the processing loop winds down instead of
// spinning on a dead source.
func (p *Pipeline) captureLoop(ctx context.Context, cancel context.CancelFunc) {
	defer p.wg.Done()
	defer cancel()

	blocks := make(chan []float32, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.streamer.StartCapture(ctx, blocks)
		close(blocks)
	}()

	for block := range blocks {
		p.queue.Push(block)
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		p.log.Errorf("capture stream failed: %v", err)
	}
}

// processLoop drains the queue into the accumulator and runs full windows
// through transcription and detection. Transient transcription errors are
// logged and skipped; only cancellation ends the loop.
func (p *Pipeline) processLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		block, ok := p.queue.Pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(drainPoll):
			}
			continue
		}

		p.acc.Push(block)
		win, ready := p.acc.Drain()
		if !ready {
			continue
		}

		id := uuid.NewString()[:8]
		segments, err := p.transcriber.Transcribe(ctx, win, p.cfg.SampleRate)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warnw("transcription failed", "window", id, "err", err)
			continue
		}
		if ctx.Err() != nil {
			// Shut down without emitting events for a window that finished
			// transcribing after Stop was requested.
			return
		}

		for _, segment := range segments {
			p.handleSegment(id, segment.Text)
		}
	}
}

func (p *Pipeline) handleSegment(id, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p.log.Infow("transcribed", "window", id, "text", text)

	for _, address := range p.detector.Detect(text) {
		p.log.Infow("keyword detected", "window", id, "address", address)
		p.scheduler.Trigger(address)
	}
	p.scheduler.ForwardText(text)
}
