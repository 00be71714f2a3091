package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/app"
	"github.com/artpar/mailcraft/bootstrap"
	"github.com/artpar/mailcraft/core/formatter"
	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/domain/forest"
)

var (
	buildOut      string
	buildArchive  bool
	buildDocument string
	buildModules  bool
)

var modulesView = formatter.View{
	Name:    "modules",
	Columns: []string{"id", "kind", "parent", "bucket", "depth"},
	Hidden:  []string{"values"},
}

var buildCmd = &cobra.Command{
	Use:   "build RECIPE",
	Short: "Compile a recipe to email HTML",
	Long: `Run a YAML recipe against a fresh document and print the exported HTML.

With --archive the export is stored in the configured database under the
document key (default: the recipe name). An export identical to the latest
archived one is not stored again.

Examples:
  mailcraft build spring.yaml > spring.html
  mailcraft build spring.yaml --out spring.html --archive
  mailcraft build spring.yaml --modules -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildOut, "out", "", "write HTML to file instead of stdout")
	buildCmd.Flags().BoolVar(&buildArchive, "archive", false, "archive the export in the configured database")
	buildCmd.Flags().StringVar(&buildDocument, "document", "", "archive key (default: recipe name)")
	buildCmd.Flags().BoolVar(&buildModules, "modules", false, "list the resulting modules instead of the HTML")
}

func runBuild(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read recipe: %w", err)
	}
	recipe, err := app.ParseRecipe(data)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !buildArchive {
		cfg.Database.Driver = "memory"
	}

	stderr := cmd.ErrOrStderr()
	services, err := bootstrap.NewServices(cfg, bootstrap.NewLogger(cfg.Logging, stderr))
	if err != nil {
		return err
	}
	defer services.Shutdown()

	key := documentKey(recipe, args[0])
	doc, err := services.Workspace.Create(key)
	if err != nil {
		return err
	}

	var (
		result   export.Result
		exported app.ExportResult
		modules  []map[string]any
	)
	err = services.Workspace.With(doc.ID, func(b *app.Builder) error {
		if _, err := recipe.Apply(b); err != nil {
			return err
		}
		modules = moduleRecords(b.Snapshot())
		if buildArchive {
			exported, err = services.Exports.Export(cmd.Context(), key, b)
			result = export.Result{HTML: exported.Record.HTML, MalformedColors: exported.Record.MalformedColors, Skipped: exported.Record.Skipped}
			return err
		}
		result = services.Exports.Compile(b)
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range result.Skipped {
		fmt.Fprintf(stderr, "warning: module %s skipped (unknown kind)\n", id)
	}
	for _, id := range result.MalformedColors {
		fmt.Fprintf(stderr, "warning: table %s background replaced by %s\n", id, services.Exports.Options().FallbackColor)
	}
	if buildArchive {
		state := "archived"
		if !exported.Archived {
			state = "unchanged"
		}
		fmt.Fprintf(stderr, "export %s %s (document %s)\n", exported.Record.ID, state, key)
	}

	if buildModules {
		return printList(cmd.OutOrStdout(), modulesView, modules)
	}

	if buildOut != "" {
		if err := os.WriteFile(buildOut, []byte(result.HTML+"\n"), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", buildOut, len(result.HTML))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.HTML)
	return nil
}

func documentKey(r app.Recipe, path string) string {
	if buildDocument != "" {
		return buildDocument
	}
	if r.Name != "" {
		return r.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func moduleRecords(f *forest.Forest) []map[string]any {
	mods := f.Modules()
	records := make([]map[string]any, len(mods))
	for i, m := range mods {
		d := 0
		for p := m.ParentID; p != ""; d++ {
			parent, ok := f.Get(p)
			if !ok {
				break
			}
			p = parent.ParentID
		}
		records[i] = map[string]any{
			"id":     m.ID,
			"kind":   m.KindID,
			"parent": m.ParentID,
			"bucket": string(m.Bucket),
			"depth":  d,
			"values": m.Values,
		}
	}
	return records
}
