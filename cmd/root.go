package cmd

import (
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "voxpulse",
	Short: "Live speech keyword spotting with OSC output",
	Long: `Voxpulse captures live audio, transcribes it in overlapping windows,
scans the text for configured keywords and emits OSC trigger/reset pulses
so a visualization tool (e.g. TouchDesigner) can react in near real time.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose console logging")
}
