package osc

import (
	"sync"
	"testing"
)

type recordingSink struct {
	mu    sync.Mutex
	sends []send
}

type send struct {
	address string
	value   any
}

func (r *recordingSink) Send(address string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, send{address, value})
	return nil
}

func TestInitializeSweep(t *testing.T) {
	sink := &recordingSink{}

	err := Initialize(sink, []string{"/keyword/love", "/keyword/stop"}, 0)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	want := []send{
		{InitStartAddress, 1.0},
		{"/keyword/love", 1.0},
		{"/keyword/love", 0.0},
		{"/keyword/stop", 1.0},
		{"/keyword/stop", 0.0},
		{InitCompleteAddress, 1.0},
		{InitCompleteAddress, 0.0},
	}
	if len(sink.sends) != len(want) {
		t.Fatalf("sent %d messages, want %d: %v", len(sink.sends), len(want), sink.sends)
	}
	for i, w := range want {
		if sink.sends[i] != w {
			t.Errorf("send %d = %v, want %v", i, sink.sends[i], w)
		}
	}
}

func TestPulseRepeats(t *testing.T) {
	sink := &recordingSink{}

	if err := Pulse(sink, "/keyword/love", 3, 0); err != nil {
		t.Fatalf("Pulse: %v", err)
	}
	if len(sink.sends) != 6 {
		t.Fatalf("sent %d messages, want 6", len(sink.sends))
	}
	for i, s := range sink.sends {
		wantValue := 1.0
		if i%2 == 1 {
			wantValue = 0.0
		}
		if s.address != "/keyword/love" || s.value != wantValue {
			t.Errorf("send %d = %v", i, s)
		}
	}
}

func TestClientRejectsBadTarget(t *testing.T) {
	if _, err := NewClient("", 9000); err == nil {
		t.Error("empty host accepted")
	}
	if _, err := NewClient("127.0.0.1", 0); err == nil {
		t.Error("port 0 accepted")
	}
	if _, err := NewClient("127.0.0.1", 70000); err == nil {
		t.Error("port 70000 accepted")
	}
}
