package main

import (
	"os"

	"github.com/tutorat/tutorat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
