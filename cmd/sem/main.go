// Package main is the entry point for the sem CLI tool.
package main

import (
	"os"

	"github.com/jeremyn/simple-ebook-manager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
