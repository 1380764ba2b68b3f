/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"os"

	"github.com/cristianoliveira/sendpanel/cmd"
	"github.com/cristianoliveira/sendpanel/internal/colors"
)

func main() {
	os.Exit(run(cmd.Execute))
}

// run executes the CLI and maps its outcome to an exit code.
func run(execute func() error) int {
	colors.StructuredInfo("startup", "main", "started", nil, "", nil)
	if err := execute(); err != nil {
		colors.StructuredError("startup", "main", "failed", err, "", nil)
		return 1
	}
	colors.StructuredInfo("startup", "main", "completed", nil, "", nil)
	return 0
}
