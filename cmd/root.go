package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════╗",
		"║  ████████╗██████╗ ███████╗██╗     ██╗     ██╗███████╗    ║",
		"║  ╚══██╔══╝██╔══██╗██╔════╝██║     ██║     ██║██╔════╝    ║",
		"║     ██║   ██████╔╝█████╗  ██║     ██║     ██║███████╗    ║",
		"║     ██║   ██╔══██╗██╔══╝  ██║     ██║     ██║╚════██║    ║",
		"║     ██║   ██║  ██║███████╗███████╗███████╗██║███████║    ║",
		"║     ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝╚══════╝    ║",
		"║                                                          ║",
		"║        🌱 Declarative schemas, growing databases          ║",
		"╚══════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                      ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "trellis",
	Short: "Apply declarative schema documents to Postgres and MySQL",
	Long: `
Trellis reads a declarative schema document describing tables, seed
data, screens and routes, computes a safe dependency ordering, and
applies the schema and data to a live database.

Database Support:
- PostgreSQL
- MySQL`,
	Version: Version,

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./trellis.config.json)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("trellis.config")
	}

	viper.AutomaticEnv()

	viper.ReadInConfig()
}
