package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trellis-db/trellis/internal/config"
	"github.com/trellis-db/trellis/internal/database"
	"github.com/trellis-db/trellis/internal/ddl"
	"github.com/trellis-db/trellis/internal/schema"
	"github.com/trellis-db/trellis/internal/seeder"
)

var (
	applyFile       string
	applyTablesOnly bool
	applyDataOnly   bool
	applyTruncate   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create tables and seed data from the schema document",
	Long: `Load the schema document, create the declared tables in dependency
order inside one transaction, then insert the seed data group by group.
Row failures are reported and skipped; DDL failures roll back and abort.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyTablesOnly && applyDataOnly {
			return fmt.Errorf("--tables-only and --data-only are mutually exclusive")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		path := cfg.SchemaPath
		if applyFile != "" {
			path = applyFile
		}

		doc, err := schema.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load schema document: %w", err)
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()

		client, err := database.New(cfg.Database.Provider)
		if err != nil {
			return err
		}
		if err := client.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer client.Close()

		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("failed to reach database: %w", err)
		}

		fmt.Printf("📋 Applying %s to %s\n", path, cfg.Database.Provider)
		if !applyDataOnly {
			fmt.Printf("   Tables: %d\n", len(doc.Tables))
		}
		if !applyTablesOnly {
			fmt.Printf("   Seed groups: %d\n", len(doc.Data))
			if applyTruncate {
				color.Red("   Existing rows in seed tables will be DELETED")
			}
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Print("\nDo you want to continue? (yes/no): ")
			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "yes" && response != "y" {
				fmt.Println("❌ Apply cancelled")
				return nil
			}
		}

		tables := &tableProgress{}
		if !applyDataOnly {
			fmt.Println()
			if err := ddl.NewApplier(client, tables).Apply(ctx, doc); err != nil {
				return err
			}
			if tables.created == 0 {
				fmt.Println("ℹ️  No tables to create")
			}
		}

		seed := &seedProgress{}
		if !applyTablesOnly {
			applier := seeder.NewApplier(client, doc, seed, seeder.Options{
				LocaleTable:       cfg.Seed.LocaleTable,
				LocaleColumn:      cfg.Seed.LocaleColumn,
				TranslationSuffix: cfg.Seed.TranslationSuffix,
			})

			if applyTruncate {
				fmt.Println()
				fmt.Println("🔄 Deleting existing rows from seed tables")
				if err := applier.Truncate(ctx); err != nil {
					return err
				}
			}

			fmt.Println()
			if err := applier.Apply(ctx); err != nil {
				return err
			}
		}

		fmt.Println()
		color.Green("🎉 Applied %d table(s) and %d row(s)", tables.created, seed.rows)
		if seed.failures > 0 {
			return fmt.Errorf("seeding completed with %d failed row(s)", seed.failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applyFile, "file", "", "Schema document path (overrides schema_path)")
	applyCmd.Flags().BoolVar(&applyTablesOnly, "tables-only", false, "Create tables, skip seed data")
	applyCmd.Flags().BoolVar(&applyDataOnly, "data-only", false, "Insert seed data, skip table creation")
	applyCmd.Flags().BoolVar(&applyTruncate, "truncate", false, "Delete existing rows from seed tables before seeding")
}

type tableProgress struct {
	created int
}

func (p *tableProgress) TableCreated(table string) {
	p.created++
	color.Green("✅ Created table %s", table)
}

type seedProgress struct {
	rows         int
	failures     int
	unresolved   int
	translations int
}

func (p *seedProgress) GroupStarted(table string, rows int) {
	color.Cyan("🌱 Seeding %s (%d rows)", table, rows)
}

func (p *seedProgress) RowInserted(table string, keys map[string]any) {
	p.rows++
}

func (p *seedProgress) RowFailed(table string, err error) {
	p.failures++
	color.Red("❌ %s: %v", table, err)
}

func (p *seedProgress) LookupUnresolved(table, column string, matches int) {
	p.unresolved++
	color.Yellow("⚠️  %s.%s matched %d rows, set to null", table, column, matches)
}

func (p *seedProgress) TranslationWritten(table, locale string) {
	p.translations++
}
