// Package osc carries pipeline events to the downstream visualization tool
// as fire-and-forget UDP datagrams.
package osc

// Sink sends a single value to an OSC address. Delivery is best-effort with
// no acknowledgment and no ordering guarantee across addresses.
type Sink interface {
	Send(address string, value any) error
}
