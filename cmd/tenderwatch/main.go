package main

import (
	"os"

	"github.com/atacama-labs/tenderwatch/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
