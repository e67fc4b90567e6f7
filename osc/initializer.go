package osc

import "time"

// Addresses used by the channel initializer so the receiving tool can
// pre-create its channels before any speech arrives.
const (
	InitStartAddress    = "/system/init_start"
	InitCompleteAddress = "/system/init_complete"
)

// Initialize pulses every address once (1.0 then 0.0) bracketed by the
// init start/complete signals. The downstream OSC receiver materializes a
// channel per address on first contact.
func Initialize(sink Sink, addresses []string, pulse time.Duration) error {
	if err := sink.Send(InitStartAddress, 1.0); err != nil {
		return err
	}
	time.Sleep(pulse)

	for _, address := range addresses {
		if err := Pulse(sink, address, 1, pulse); err != nil {
			return err
		}
	}

	if err := sink.Send(InitCompleteAddress, 1.0); err != nil {
		return err
	}
	time.Sleep(pulse)
	return sink.Send(InitCompleteAddress, 0.0)
}

// Pulse sends times ON/OFF pairs to one address, holding each phase for the
// given duration.
func Pulse(sink Sink, address string, times int, hold time.Duration) error {
	for i := 0; i < times; i++ {
		if err := sink.Send(address, 1.0); err != nil {
			return err
		}
		time.Sleep(hold)
		if err := sink.Send(address, 0.0); err != nil {
			return err
		}
		if i < times-1 {
			time.Sleep(hold)
		}
	}
	return nil
}
