// Package main hosts the chess-scanner CLI: board recognition from photos,
// feedback log inspection, and classifier retraining.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
