package main

import (
	"os"

	"github.com/voxpulse/voxpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
