package main

import (
	"os"

	"github.com/mesafina/mesafina/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
