package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxpulse/voxpulse/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input devices",
	RunE: func(_ *cobra.Command, _ []string) error {
		devices, err := audio.ListDevices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No audio input devices found.")
			return nil
		}

		fmt.Println("Available audio input devices:")
		for _, device := range devices {
			marker := ""
			if device.Default {
				marker = " (DEFAULT)"
			}
			fmt.Printf("  %d: %s [%d channels]%s\n",
				device.ID, device.Name, device.MaxInputChannels, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
