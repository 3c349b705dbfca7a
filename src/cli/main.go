package main

import (
	"os"

	"github.com/drydock-ci/drydock/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
