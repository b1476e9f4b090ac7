package main

import (
	"os"

	"github.com/bianoble/shotpull/cmd/shotpull/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
