package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "taskd",
	Version: Version,
	Short:   "A single-user task tracking server",
	Long: `Taskd is a single-user task tracking server.
It owns a small persistent store of projects and tasks, serves it over a
local HTTP API, and records every mutation in an append-only audit log.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
