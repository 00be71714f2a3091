package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/adapters/sqlite"
	"github.com/artpar/mailcraft/app"
	"github.com/artpar/mailcraft/bootstrap"
	"github.com/artpar/mailcraft/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [RECIPE...]",
	Short: "Validate configuration and recipes",
	Long: `Validate the mailcraft configuration file and, optionally, recipes.

Checks:
  - YAML syntax is valid
  - Values are in range (port, drivers, policies, colors)
  - Database is writable (optional)
  - Each recipe parses and applies to an empty document

Examples:
  mailcraft validate
  mailcraft validate --check-database
  mailcraft validate recipes/*.yaml`,
	RunE: runValidate,
}

var (
	validateCheckDatabase bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	var cfg *config.Config
	if _, err := os.Stat(cfgFile); err == nil {
		c, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(out, "  %s Config valid\n", crossMark)
			return fmt.Errorf("config error: %w", err)
		}
		cfg = c
		fmt.Fprintf(out, "  %s Config valid\n", checkMark)
	} else {
		c, err := config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(out, "  %s Environment config valid\n", crossMark)
			return fmt.Errorf("config error: %w", err)
		}
		cfg = c
		fmt.Fprintf(out, "  %s No config file, environment config valid\n", checkMark)
	}

	fmt.Fprintf(out, "  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	fmt.Fprintf(out, "  %s Export: else=%s fallback=%s variable=%s\n", checkMark,
		cfg.Export.ElsePolicy, cfg.Export.FallbackColor, cfg.Export.CountryVariable)

	if validateCheckDatabase && cfg.Database.Driver != "memory" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Fprintf(out, "  %s Database writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Database writable\n", checkMark)
		}
	}

	failed := 0
	if len(args) > 0 {
		recipeCfg := *cfg
		recipeCfg.Database.Driver = "memory"
		services, err := bootstrap.NewServices(&recipeCfg, zerolog.Nop())
		if err != nil {
			return err
		}
		for _, path := range args {
			if err := checkRecipe(services, path); err != nil {
				failed++
				fmt.Fprintf(out, "  %s Recipe %s\n", crossMark, path)
				fmt.Fprintf(out, "      Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "  %s Recipe %s\n", checkMark, path)
		}
	}

	fmt.Fprintln(out)
	if failed > 0 {
		return fmt.Errorf("%d of %d recipes invalid", failed, len(args))
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

// checkRecipe applies the recipe to a scratch document.
func checkRecipe(services *bootstrap.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	recipe, err := app.ParseRecipe(data)
	if err != nil {
		return err
	}

	doc, err := services.Workspace.Create(path)
	if err != nil {
		return err
	}
	defer services.Workspace.Delete(doc.ID)

	return services.Workspace.With(doc.ID, func(b *app.Builder) error {
		_, err := recipe.Apply(b)
		return err
	})
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.MigrateContext(ctx); err != nil {
		return err
	}
	return db.HealthCheck(ctx)
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
