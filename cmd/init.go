package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trellis-db/trellis/template"
)

var (
	postgresFlag bool
	mysqlFlag    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new trellis project",
	Long:  `Create trellis.config.json, a starter schema document, and the sharded document directories.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if postgresFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--postgres or --mysql)")
		}

		return initializeProject(dbType)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&postgresFlag, "postgres", false, "Initialize project for PostgreSQL")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL")
}

func initializeProject(dbType template.DatabaseType) error {
	tmpl := template.NewProjectTemplate(dbType)

	directories := tmpl.GetDirectoryStructure()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"trellis.config.json": tmpl.GetTrellisConfig(),
	}

	schemaExists := false
	if _, err := os.Stat("db/schema.yaml"); err == nil {
		schemaExists = true
	}
	if !schemaExists {
		files["db/schema.yaml"] = tmpl.GetSchema()
	}

	for filePath, content := range files {
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", filePath, err)
		}
	}

	if err := handleEnvFile(tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	fmt.Printf("✅ Successfully initialized trellis project with %s database support\n", dbType)
	fmt.Println()
	fmt.Println("📁 Project structure created:")
	for _, dir := range directories {
		fmt.Printf("   %s/\n", dir)
	}
	fmt.Println()
	fmt.Println("📝 Configuration file created:")
	fmt.Println("   trellis.config.json")

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}
	if schemaExists {
		fmt.Println("ℹ️  Skipped db/schema.yaml (already exists)")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   trellis validate   # Check the schema document\n")
	fmt.Printf("   trellis plan       # Preview the application order\n")
	fmt.Printf("   trellis apply      # Create tables and seed data\n")

	return nil
}

// handleEnvFile creates .env, or appends DATABASE_URL when the file
// exists without one. Existing variables are never touched.
func handleEnvFile(defaultEnvContent string) error {
	envPath := ".env"

	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by trellis\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
