package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxpulse/voxpulse/config"
	"github.com/voxpulse/voxpulse/osc"
)

var sendTestCmd = &cobra.Command{
	Use:   "sendtest",
	Short: "Send OSC smoke-test messages to verify connectivity",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		table, err := loadTable(cfg)
		if err != nil {
			return err
		}
		sink, err := osc.NewClient(cfg.OSCHost, cfg.OSCPort)
		if err != nil {
			return err
		}

		fmt.Printf("OSC test -> %s:%d\n", cfg.OSCHost, cfg.OSCPort)

		if err := sink.Send("/test/started", 1.0); err != nil {
			return err
		}

		for _, address := range table.Addresses() {
			if err := osc.Pulse(sink, address, 1, 100*time.Millisecond); err != nil {
				return err
			}
			fmt.Printf("  pulsed %s\n", address)
		}

		for i := 0; i < 5; i++ {
			value := rand.Float64()
			if err := sink.Send("/test/random", value); err != nil {
				return err
			}
			fmt.Printf("  /test/random = %.3f\n", value)
			time.Sleep(100 * time.Millisecond)
		}

		if err := sink.Send("/test/completed", 1.0); err != nil {
			return err
		}
		fmt.Println("Test complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendTestCmd)
}
