package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crosspost-cli/crosspost/internal/logutil"
)

var rootCmd = &cobra.Command{
	Use:   "crosspost",
	Short: "Post content to multiple social media platforms",
	Long: `crosspost publishes a single post (text plus optional media) to
Facebook, Instagram, Telegram, and LinkedIn through each platform's
native API.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	logutil.Setup(os.Getenv("LOG_LEVEL"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
