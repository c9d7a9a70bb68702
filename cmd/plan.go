package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trellis-db/trellis/internal/config"
	"github.com/trellis-db/trellis/internal/ddl"
	"github.com/trellis-db/trellis/internal/depgraph"
	"github.com/trellis-db/trellis/internal/schema"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the application order without touching a database",
	Long: `Compute and print the table-creation order and the seed-group order
for the schema document. Nothing is executed; no database connection
is made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		path := cfg.SchemaPath
		if planFile != "" {
			path = planFile
		}

		doc, err := schema.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load schema document: %w", err)
		}

		tableOrder, defs, err := ddl.Plan(doc)
		if err != nil {
			return err
		}

		if len(tableOrder) == 0 {
			fmt.Println("No tables declared")
		} else {
			color.Cyan("📋 Table creation order:")
			for i, table := range tableOrder {
				def := defs[table]
				suffix := ""
				if len(def.Indexes) == 1 {
					suffix = ", 1 index"
				} else if len(def.Indexes) > 1 {
					suffix = fmt.Sprintf(", %d indexes", len(def.Indexes))
				}
				fmt.Printf("   %d. %s (%d columns%s)\n", i+1, table, len(def.Columns), suffix)
			}
		}

		dataOrder, err := depgraph.Data(doc).Order()
		if err != nil {
			return fmt.Errorf("failed to order seed data: %w", err)
		}

		totalRows := 0
		var groups []string
		for _, group := range dataOrder {
			if rows, ok := doc.Data[group]; ok {
				groups = append(groups, group)
				totalRows += len(rows)
			}
		}

		if len(groups) > 0 {
			fmt.Println()
			color.Cyan("🌱 Seed order:")
			for i, group := range groups {
				fmt.Printf("   %d. %s (%d rows)\n", i+1, group, len(doc.Data[group]))
			}
		}

		if len(doc.Screens) > 0 {
			fmt.Println()
			color.Cyan("🖥️  Screens:")
			for _, name := range sortedScreenNames(doc.Screens) {
				marker := ""
				if doc.Screens[name].Menu {
					marker = " (menu)"
				}
				fmt.Printf("   - %s%s\n", name, marker)
			}
		}

		if len(doc.Routes) > 0 {
			fmt.Println()
			color.Cyan("🛣️  Routes:")
			printRoutes(doc.Routes, "   ")
		}

		fmt.Println()
		color.Green("✅ Plan: %d tables, %d seed groups, %d rows", len(tableOrder), len(groups), totalRows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFile, "file", "", "Schema document path (overrides schema_path)")
}

func printRoutes(routes []schema.Route, indent string) {
	for _, route := range routes {
		target := route.Component
		if route.Lazy != "" {
			target = route.Lazy + " (lazy)"
		}
		if target == "" {
			fmt.Printf("%s%s\n", indent, route.Path)
		} else {
			fmt.Printf("%s%s -> %s\n", indent, route.Path, target)
		}
		if len(route.Children) > 0 {
			printRoutes(route.Children, indent+"   ")
		}
	}
}

func sortedScreenNames(screens map[string]schema.Screen) []string {
	names := make([]string, 0, len(screens))
	for name := range screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
