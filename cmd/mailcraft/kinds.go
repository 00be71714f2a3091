package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/adapters/catalog"
	"github.com/artpar/mailcraft/core/formatter"
	"github.com/artpar/mailcraft/domain/module"
)

var kindsView = formatter.View{
	Name:    "kinds",
	Columns: []string{"id", "label", "role", "fields", "aliases"},
}

var kindsCmd = &cobra.Command{
	Use:     "kinds",
	Aliases: []string{"catalog"},
	Short:   "List the module kinds available to documents",
	Example: `  mailcraft kinds
  mailcraft kinds -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := catalog.New(catalog.Options{ImageBase: cfg.Catalog.ImageBaseURL})
		if err != nil {
			return err
		}

		kinds := cat.All()
		records := make([]map[string]any, len(kinds))
		for i, k := range kinds {
			records[i] = kindRecord(k)
		}
		return printList(cmd.OutOrStdout(), kindsView, records)
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func kindRecord(k module.Kind) map[string]any {
	fields := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		fields[i] = f.ID
	}

	var aliases []string
	for title, targets := range k.Aliases {
		aliases = append(aliases, title+"->"+strings.Join(targets, "+"))
	}
	sort.Strings(aliases)

	return map[string]any{
		"id":      k.ID,
		"label":   k.Label,
		"role":    k.Role().String(),
		"fields":  fields,
		"aliases": aliases,
	}
}
