package main

import (
	"os"

	"github.com/thiagokokada/gitsplit/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
