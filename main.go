package main

import (
	"os"

	"github.com/chemthink/chemthink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
