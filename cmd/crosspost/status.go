package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crosspost-cli/crosspost/internal/app"
	"github.com/crosspost-cli/crosspost/internal/config"
)

var statusPlatform string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check platform configuration and connectivity",
	Long: `Check which platforms have complete credentials and whether
those credentials are accepted by the platform APIs.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusPlatform, "platform", "p", "", "Check a single platform only")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := app.NewRegistry(cfg)
	names := registry.Names()

	if statusPlatform != "" {
		name := strings.ToLower(strings.TrimSpace(statusPlatform))
		if registry.Get(name) == nil {
			return fmt.Errorf("unknown platform %q, available platforms: %s", statusPlatform, strings.Join(names, ", "))
		}
		names = []string{name}
	}

	missing := cfg.MissingVars()

	fmt.Println("Configuration:")
	configured := 0
	for _, name := range names {
		if len(missing[name]) == 0 {
			configured++
			fmt.Printf("  ok %s\n", name)
		} else {
			fmt.Printf("  -- %s: missing %s\n", name, strings.Join(missing[name], ", "))
		}
	}

	fmt.Println("\nAPI connection:")
	var results map[string]bool
	if statusPlatform == "" {
		results = registry.ValidateAll(ctx)
	} else {
		p := registry.Get(names[0])
		results = map[string]bool{names[0]: p.IsConfigured() && p.ValidateConfig(ctx)}
	}

	connected := 0
	for _, name := range names {
		if results[name] {
			connected++
			fmt.Printf("  ok %s\n", name)
		} else {
			fmt.Printf("  -- %s: connection failed\n", name)
		}
	}

	fmt.Printf("\nConfigured: %d/%d  Connected: %d/%d\n",
		configured, len(names), connected, len(names))
	return nil
}
