package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes one audio input device.
type Device struct {
	ID               int
	Name             string
	MaxInputChannels int
	Default          bool
}

// ListDevices enumerates input-capable devices. It manages its own PortAudio
// session, so it can be called without an open stream.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	defaultInput, _ := portaudio.DefaultInputDevice()

	var inputs []Device
	for i, device := range devices {
		if device.MaxInputChannels <= 0 {
			continue
		}
		inputs = append(inputs, Device{
			ID:               i,
			Name:             device.Name,
			MaxInputChannels: device.MaxInputChannels,
			Default:          defaultInput != nil && device.Name == defaultInput.Name,
		})
	}
	return inputs, nil
}
