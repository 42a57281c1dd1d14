// Package main implements the gallery command line tool, which keeps a
// collection of progress photos and compares two of them side by side.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
