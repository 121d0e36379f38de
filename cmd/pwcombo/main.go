// Package main provides the entry point for the pwcombo CLI tool.
//
// The pwcombo command expands a password into every letter-case variant,
// permutes the characters of each variant, and writes the deduplicated result
// to a file, sorted, one password per line.
//
// Usage:
//
//	pwcombo --password PASSWORD [flags]
//
// Examples:
//
//	pwcombo --password ab1
//	pwcombo --password Secret1 --output_file combos.txt --summary table
//
// Exit status is 0 on success or when interrupted, and 1 on any error.
package main

import (
	"fmt"
	"os"

	"github.com/otuschhoff/pwcombo/cmd/pwcombo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
