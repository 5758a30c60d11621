package main

import (
	"os"

	"github.com/abhisek/examly/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
