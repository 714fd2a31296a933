package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// planCmd compiles, validates, and gates a plan without executing it.
var planCmd = &cobra.Command{
	Use:   "plan [prompt]",
	Short: "Compile a prompt into a validated, policy-gated action plan",
	Long: `Compiles a natural-language prompt into a plan of whitelisted actions,
validates it against the action registry, and applies policy constraints.
The plan is printed as JSON; nothing is executed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	logger.Info("Planning from prompt", zap.String("prompt", prompt))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp := buildPlanner(cfg).PlanFromPrompt(buildRequest(cfg, prompt))
	if !resp.Success {
		printValidationFailure(resp.Error, resp.ValidationErrors)
		return fmt.Errorf("planning failed")
	}

	out, err := json.MarshalIndent(resp.Plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printValidationFailure(message string, validationErrors []string) {
	fmt.Printf("✗ %s\n", message)
	for _, e := range validationErrors {
		fmt.Printf("  - %s\n", e)
	}
}
