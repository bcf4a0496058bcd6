package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/Ifihan/briefen-me/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Cfg holds the loaded configuration, shared by every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands register themselves in their
// own init() functions to avoid import cycles.
var RootCmd = &cobra.Command{
	Use:   "briefen",
	Short: "AI-assisted URL shortener",
	Long: `briefen shortens URLs with AI-suggested slugs, records click
analytics with background geolocation enrichment, and serves
link-in-bio pages.`,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional; deployed environments set variables directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	var err error
	Cfg, err = config.Load()
	if err != nil {
		log.Printf("Warning: problem loading configuration: %v. Using default values.", err)
	}
}
