package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"actionplan/internal/engine"
	"actionplan/internal/history"
)

// runCmd plans and then executes against registered connectors.
var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Compile a prompt and execute the resulting plan",
	Long: `Compiles a natural-language prompt into a validated plan and executes it
against the registered platform connectors. Partial failures are reported
per action; successful sibling actions keep their data.

With --dry-run the gated plan is printed and execution is skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecute,
}

func runExecute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompt := strings.Join(args, " ")
	logger.Info("Executing from prompt", zap.String("prompt", prompt))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp := buildPlanner(cfg).PlanFromPrompt(buildRequest(cfg, prompt))
	if !resp.Success {
		printValidationFailure(resp.Error, resp.ValidationErrors)
		return fmt.Errorf("planning failed")
	}

	// DryRun is a caller-side signal: the gate records it but only the host
	// acts on it, by stopping here.
	if dryRun {
		out, err := json.MarshalIndent(resp.Plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		fmt.Println(string(out))
		fmt.Println("(dry run - execution skipped)")
		return nil
	}

	connectors, err := buildConnectors(ctx)
	if err != nil {
		return err
	}

	result := engine.New(connectors).ExecutePlan(ctx, resp.Plan)

	if cfg.History.Enabled {
		if store, err := history.Open(cfg.History.Path); err != nil {
			logger.Warn("History store unavailable", zap.Error(err))
		} else {
			if err := store.SaveResult(prompt, result); err != nil {
				logger.Warn("Failed to record run", zap.Error(err))
			}
			_ = store.Close()
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.Success {
		return fmt.Errorf("plan executed with failures")
	}
	return nil
}
