// Package cli wires the porter commands.
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
	Use:     "porter",
	Version: Version,
	Short:   "Checklist-driven conversion of Chef, Puppet, and Salt to Ansible",
	Long: `Porter converts infrastructure-as-code repositories to Ansible.
It keeps a durable checklist of every conversion unit, drives an external
generator to produce artifacts, and validates the result with bounded
fix attempts until the tree converges.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
