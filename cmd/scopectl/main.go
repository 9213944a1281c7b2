// Package main is the scopectl entry point.
package main

import (
	"os"

	"github.com/opengovern/scope-bridge/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil {
		os.Exit(1)
	}
}
