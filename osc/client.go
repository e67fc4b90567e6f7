package osc

import (
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"
)

// Client is a Sink over a UDP OSC connection.
type Client struct {
	client *goosc.Client
}

var _ Sink = (*Client)(nil)

func NewClient(host string, port int) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("osc host is empty")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("osc port %d out of range", port)
	}
	return &Client{client: goosc.NewClient(host, port)}, nil
}

// Send transmits one value. Floats are sent as OSC float32, everything with
// a text representation as an OSC string.
func (c *Client) Send(address string, value any) error {
	msg := goosc.NewMessage(address)
	switch v := value.(type) {
	case float32:
		msg.Append(v)
	case float64:
		msg.Append(float32(v))
	case int:
		msg.Append(int32(v))
	case int32:
		msg.Append(v)
	case string:
		msg.Append(v)
	default:
		return fmt.Errorf("unsupported osc value type %T", value)
	}
	return c.client.Send(msg)
}
