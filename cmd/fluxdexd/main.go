package main

import (
	"os"

	"github.com/fluxdex/fluxdex/cmd/fluxdexd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
