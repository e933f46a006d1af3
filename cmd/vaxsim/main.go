package main

import (
	"github.com/tebeka/atexit"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
