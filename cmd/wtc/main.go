// Package main is the entry point for the wtc CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/wtc/cmd/wtc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
