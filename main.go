package main

import (
	"os"

	"github.com/lbarthe/socwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
