// Package main is the entry point for the hsj-operator.
//
// hsj-operator keeps a warm pool of standby Jobs for every HotStandbyJob
// resource: it probes members for idle or busy, creates members when the
// idle pool runs short and removes idle surplus after a delay.
//
// For detailed usage information, run:
//
//	hsj-operator --help
package main

import (
	"fmt"
	"os"

	"github.com/paia-tech/hsj-operator/cmd/hsj-operator/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
