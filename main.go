package main

import (
	"os"

	"github.com/documind-hq/documind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
