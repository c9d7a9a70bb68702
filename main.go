package main

import (
	"os"

	"github.com/trellis-db/trellis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
