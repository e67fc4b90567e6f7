// Package trigger turns keyword detections into timed OSC pulse pairs:
// 1.0 on detection, 0.0 after the reset delay.
package trigger

import (
	"container/heap"
	"strings"
	"sync"
	"time"

	"github.com/voxpulse/voxpulse/logger"
	"github.com/voxpulse/voxpulse/osc"
)

// DefaultTextAddress receives every non-blank transcript verbatim,
// independent of keyword matches.
const DefaultTextAddress = "/transcription/text"

type reset struct {
	address string
	gen     uint64
	at      time.Time
}

type resetHeap []*reset

func (h resetHeap) Len() int           { return len(h) }
func (h resetHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h resetHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *resetHeap) Push(x any)        { *h = append(*h, x.(*reset)) }
func (h *resetHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

// Scheduler emits trigger/reset pairs without ever blocking the detection
// path. Resets wait in a min-heap serviced by a single timer goroutine.
//
// Re-trigger policy is cancel-and-replace: a new ON on an address bumps its
// generation, so a still-pending OFF from the previous ON is discarded when
// it surfaces. The last pulse on an address always runs ON→OFF in order.
type Scheduler struct {
	sink        osc.Sink
	delay       time.Duration
	textAddress string
	log         *logger.Logger

	mu      sync.Mutex
	pending resetHeap
	gens    map[string]uint64
	running bool
	quit    chan struct{}
	done    chan struct{}

	wake chan struct{}
}

func NewScheduler(sink osc.Sink, delay time.Duration, textAddress string, log *logger.Logger) *Scheduler {
	if textAddress == "" {
		textAddress = DefaultTextAddress
	}
	return &Scheduler{
		sink:        sink,
		delay:       delay,
		textAddress: textAddress,
		log:         log,
		gens:        make(map[string]uint64),
		wake:        make(chan struct{}, 1),
	}
}

// Start launches the timer loop. Starting an already-running scheduler is a
// no-op; a stopped scheduler may be started again.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.quit, s.done)
}

// Trigger sends 1.0 to the address immediately and schedules the matching
// 0.0 for delay later.
func (s *Scheduler) Trigger(address string) {
	// Invalidate any pending OFF for this address before the new ON goes
	// out, so a stale reset cannot land between the two.
	s.mu.Lock()
	s.gens[address]++
	gen := s.gens[address]
	s.mu.Unlock()

	s.send(address, 1.0)

	s.mu.Lock()
	heap.Push(&s.pending, &reset{
		address: address,
		gen:     gen,
		at:      time.Now().Add(s.delay),
	})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// ForwardText sends a transcript segment to the informational address.
// Blank or whitespace-only text is not forwarded.
func (s *Scheduler) ForwardText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.send(s.textAddress, text)
}

// PendingResets reports scheduled OFF events not yet fired.
func (s *Scheduler) PendingResets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop halts the timer loop and flushes pending resets immediately so no
// downstream address is left latched high. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	quit, done := s.quit, s.done
	s.mu.Unlock()

	close(quit)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending.Len() > 0 {
		r := heap.Pop(&s.pending).(*reset)
		if s.gens[r.address] != r.gen {
			continue // replaced by a newer trigger
		}
		delete(s.gens, r.address)
		s.send(r.address, 0.0)
	}
}

func (s *Scheduler) run(quit, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait := s.fireDue()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-quit:
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// fireDue sends every reset whose time has come and returns how long the
// loop may sleep until the next one.
func (s *Scheduler) fireDue() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.pending.Len() > 0 {
		next := s.pending[0]
		now := time.Now()
		if next.at.After(now) {
			return next.at.Sub(now)
		}
		heap.Pop(&s.pending)
		if s.gens[next.address] != next.gen {
			continue // replaced by a newer trigger
		}
		delete(s.gens, next.address)
		s.send(next.address, 0.0)
	}
	return time.Hour
}

func (s *Scheduler) send(address string, value any) {
	if err := s.sink.Send(address, value); err != nil && s.log != nil {
		s.log.Warnf("osc send to %s failed: %v", address, err)
	}
}
