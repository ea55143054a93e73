package main

import (
	"os"

	"github.com/iwatkot/maps4fs-launcher/cmd/launcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
