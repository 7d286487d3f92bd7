package main

import (
	"os"

	"github.com/okarpov/jobradar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
