package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/bootstrap"
	"github.com/artpar/mailcraft/core/formatter"
	"github.com/artpar/mailcraft/domain/export"
)

var (
	exportsLimit int
	exportsHTML  bool
)

var exportsView = formatter.View{
	Name:    "exports",
	Columns: []string{"id", "document", "created_at", "bytes", "modules", "else_policy", "fingerprint"},
	Hidden:  []string{"html", "roots", "malformed_colors", "skipped"},
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Inspect archived exports",
}

var exportsListCmd = &cobra.Command{
	Use:   "list DOCUMENT",
	Short: "List a document's exports, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := archiveServices(cmd)
		if err != nil {
			return err
		}
		defer services.Shutdown()

		recs, err := services.Exports.History(cmd.Context(), args[0], exportsLimit)
		if err != nil {
			return err
		}
		records := make([]map[string]any, len(recs))
		for i, r := range recs {
			records[i] = exportRecord(r)
		}
		return printList(cmd.OutOrStdout(), exportsView, records)
	},
}

var exportsShowCmd = &cobra.Command{
	Use:   "show EXPORT",
	Short: "Show one export",
	Example: `  mailcraft exports show exp_3f2a...
  mailcraft exports show exp_3f2a... --html > email.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := archiveServices(cmd)
		if err != nil {
			return err
		}
		defer services.Shutdown()

		rec, err := services.Exports.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if exportsHTML {
			fmt.Fprintln(cmd.OutOrStdout(), rec.HTML)
			return nil
		}
		return printRecord(cmd.OutOrStdout(), exportsView, exportRecord(rec))
	},
}

func init() {
	rootCmd.AddCommand(exportsCmd)
	exportsCmd.AddCommand(exportsListCmd, exportsShowCmd)

	exportsListCmd.Flags().IntVar(&exportsLimit, "limit", 20, "maximum exports to list (0 = all)")
	exportsShowCmd.Flags().BoolVar(&exportsHTML, "html", false, "print the raw HTML only")
}

func archiveServices(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "memory" {
		return nil, fmt.Errorf("database.driver is memory: no exports are archived")
	}
	return bootstrap.NewServices(cfg, bootstrap.NewLogger(cfg.Logging, cmd.ErrOrStderr()))
}

func exportRecord(r export.Record) map[string]any {
	return map[string]any{
		"id":               r.ID,
		"document":         r.DocumentID,
		"created_at":       r.CreatedAt.UTC().Format(time.RFC3339),
		"bytes":            r.Bytes,
		"roots":            r.Roots,
		"modules":          r.Modules,
		"else_policy":      string(r.ElsePolicy),
		"fingerprint":      r.Fingerprint,
		"malformed_colors": r.MalformedColors,
		"skipped":          r.Skipped,
		"html":             r.HTML,
	}
}
