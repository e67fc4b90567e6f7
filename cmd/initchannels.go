package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxpulse/voxpulse/config"
	"github.com/voxpulse/voxpulse/keyword"
	"github.com/voxpulse/voxpulse/osc"
)

var (
	initPulse   time.Duration
	initKeyword string
)

var initChannelsCmd = &cobra.Command{
	Use:   "initchannels",
	Short: "Pulse every keyword address so the OSC receiver creates its channels",
	Long: `Sends a 1.0/0.0 pulse to every unique keyword address, bracketed by
/system/init_start and /system/init_complete, so the receiving tool
materializes a channel per address before any speech arrives.

With --keyword, pulses only that keyword's address three times.`,
	RunE: runInitChannels,
}

func init() {
	initChannelsCmd.Flags().DurationVar(&initPulse, "pulse", 100*time.Millisecond, "pulse hold duration")
	initChannelsCmd.Flags().StringVar(&initKeyword, "keyword", "", "pulse a single keyword's address instead of all")

	rootCmd.AddCommand(initChannelsCmd)
}

func runInitChannels(cmd *cobra.Command, _ []string) error {
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

	if initKeyword != "" {
		address, ok := table.Lookup(initKeyword)
		if !ok {
			return fmt.Errorf("keyword %q not in table", initKeyword)
		}
		fmt.Printf("Testing keyword %q -> %s\n", initKeyword, address)
		return osc.Pulse(sink, address, 3, initPulse)
	}

	addresses := table.Addresses()
	fmt.Printf("Initializing %d channels on %s:%d\n", len(addresses), cfg.OSCHost, cfg.OSCPort)
	if err := osc.Initialize(sink, addresses, initPulse); err != nil {
		return err
	}

	for _, address := range addresses {
		fmt.Printf("  %s -> %s\n", address, strings.Join(table.Words(address), ", "))
	}
	fmt.Println("Initialization complete.")
	return nil
}
