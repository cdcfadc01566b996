// Package commands wires the ais command line interface.
package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ais",
		Short: "Oracle APEX IntelliSense server and cache tooling",
		Long: color.CyanString(`AIS - APEX IntelliSense Server

AIS mirrors the metadata of an Oracle schema (packages, stored
procedures, arguments, package globals and APEX page items) into a
local cache and serves PL/SQL completion to editors over the Language
Server Protocol.

Typical workflow:
  • ais sync       mirror the schema into .ais/cache.yaml
  • ais lsp        start the language server (launched by the editor)
  • ais cache      inspect or clear the cache documents`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewLSPCommand())
	rootCmd.AddCommand(NewCacheCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Print("ais version: ")
			valueColor.Println(Version)

			titleColor.Print("Git commit: ")
			valueColor.Println(GitCommit)

			titleColor.Print("Build date: ")
			valueColor.Println(BuildDate)

			titleColor.Print("Go version: ")
			valueColor.Println(goVer)
		},
	}
}
