package main

import (
	"os"

	"github.com/loadaxis/fleetopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
