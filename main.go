package main

import (
	"os"

	"github.com/voxrelay/voxctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
