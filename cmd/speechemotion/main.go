// Package main is the entry point for the speechemotion CLI.
//
// Usage:
//
//	speechemotion [flags] <command> [args]
//
// Commands:
//
//	predict    - Classify the emotion of a WAV recording
//	features   - Dump the MFCC feature matrix of a WAV recording
//	models     - List the recognized classifiers
//	config     - Show or initialize the configuration file
//	version    - Show version information
package main

import (
	"os"

	"github.com/haivivi/speechemotion/cmd/speechemotion/commands"
	"github.com/haivivi/speechemotion/pkg/cli"
)

func main() {
	if err := commands.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(commands.ExitCode(err))
	}
}
