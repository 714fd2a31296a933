package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"actionplan/internal/history"
	"actionplan/internal/registry"
)

// actionsCmd lists the action whitelist with parameter schemas.
var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the whitelisted action types and their parameter schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, schema := range registry.All() {
			fmt.Printf("%s\n  %s\n", schema.Type, schema.Description)
			for _, f := range schema.Fields {
				req := "optional"
				if f.Required {
					req = "required"
				}
				fmt.Printf("    %-18s %-10s %s\n", f.Name, f.Kind, req)
			}
			fmt.Println()
		}
		return nil
	},
}

// connectorsCmd lists registered connectors with metadata and health.
var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "List registered connectors with metadata and health status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg, err := buildConnectors(ctx)
		if err != nil {
			return err
		}

		for _, platform := range reg.List() {
			c, _ := reg.Get(platform)
			meta := c.Metadata()
			health := c.HealthCheck(ctx)

			status := "unhealthy"
			if health.Healthy {
				status = "healthy"
			}
			fmt.Printf("%-8s %s v%s [%s] %s\n", platform, meta.Name, meta.Version, status, health.Message)
			fmt.Printf("         capabilities: %d action types, configured: %v\n", len(meta.Capabilities), meta.Configured)
		}
		return nil
	},
}

var historyLimit int

// historyCmd lists recent executed plans from the history store.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent plan executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			fmt.Println("History store is disabled in config.")
			return nil
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()

		runs, err := store.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		for _, run := range runs {
			status := "FAIL"
			if run.Success {
				status = "OK"
			}
			prompt := run.Prompt
			if len(prompt) > 48 {
				prompt = prompt[:45] + "..."
			}
			fmt.Printf("%-4s %-28s %-10v %d action(s)  %s\n",
				status, run.PlanID, run.Duration.Round(time.Millisecond), len(run.Results), strings.TrimSpace(prompt))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
}
