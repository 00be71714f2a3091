package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/config"
	"github.com/artpar/mailcraft/core/formatter"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	noHeader     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mailcraft",
	Short: "Email template builder with AMPscript country switches",
	Long: `mailcraft assembles marketing emails from table sections, content
modules and country switches, and exports email-safe HTML.

Quick start:
  mailcraft serve              # Start the builder API
  mailcraft build spring.yaml  # Compile a recipe to HTML

Inspection:
  mailcraft kinds              # List module kinds
  mailcraft exports list doc   # Show archived exports
  mailcraft validate           # Validate configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "mailcraft.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noHeader, "no-header", false, "omit the table header row")
}

// loadConfig reads --config, falling back to MAILCRAFT_* variables when the
// file does not exist.
func loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(cfgFile)
}

func outputFormatter() (formatter.Formatter, error) {
	return formatter.Lookup(outputFormat)
}

func printList(w io.Writer, view formatter.View, records []map[string]any) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}
	return f.FormatList(w, view, records, formatter.FormatOptions{NoHeader: noHeader})
}

func printRecord(w io.Writer, view formatter.View, record map[string]any) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}
	return f.FormatRecord(w, view, record, formatter.FormatOptions{NoHeader: noHeader})
}
