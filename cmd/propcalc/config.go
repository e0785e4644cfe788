package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ashutoshrp06/propcalc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create configuration",
	Long:  "View the effective configuration or create a default config file.",
	Run:   runConfig,
}

var configInit bool

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
}

func runConfig(cmd *cobra.Command, args []string) {
	if configInit {
		initConfig()
		return
	}
	showConfig()
}

func initConfig() {
	if _, err := os.Stat("config.yaml"); err == nil {
		fmt.Println(warnStyle.Render("config.yaml already exists. Run 'propcalc config' to view it."))
		return
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save("config.yaml"); err != nil {
		printError("Failed to create config", err)
		os.Exit(1)
	}

	fmt.Println(okStyle.Render("Created config.yaml with default settings."))
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Reply reveal delay and welcome message")
	fmt.Println("  - Default confidence level, country and quota type")
	fmt.Println("  - Logging level")
	fmt.Println("  - MCP server name")
}

func showConfig() {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
		fmt.Println(warnStyle.Render(fmt.Sprintf("Could not load config (%v). Showing defaults:\n", err)))
	} else {
		fmt.Println(paramStyle.Bold(true).Render("Current Configuration:\n"))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(string(data))

	fmt.Println(dimStyle.Render("\nConfig file locations (in order of precedence):"))
	fmt.Println("  1. --config <path>")
	fmt.Println("  2. ./config.local.yaml")
	fmt.Println("  3. ./config.yaml")
	fmt.Printf("  Environment variables such as %s_DEFAULTS_COUNTRY override file values.\n", config.EnvPrefix)
}
