package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"actionplan/internal/compiler"
	"actionplan/internal/config"
	"actionplan/internal/connector"
	"actionplan/internal/logging"
	"actionplan/internal/planner"
	"actionplan/internal/types"
)

var (
	// Global flags
	verbose    bool
	cfgPath    string
	workspace  string
	platform   string
	maxActions int
	allowList  []string
	dryRun     bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "actionplan",
	Short: "actionplan - compile natural-language instructions into validated platform actions",
	Long: `actionplan turns a free-text instruction into a validated, policy-constrained
set of platform actions and dispatches them to registered connectors.

Pipeline: prompt -> intent compiler -> validator -> policy gate -> execution engine.

Nothing outside the fixed action whitelist is ever executed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("Categorized logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default .actionplan/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory")

	for _, cmd := range []*cobra.Command{planCmd, runCmd} {
		cmd.Flags().StringVar(&platform, "platform", "", "target platform (stripe, whop)")
		cmd.Flags().IntVar(&maxActions, "max-actions", 0, "maximum actions to keep (0 = config default)")
		cmd.Flags().StringSliceVar(&allowList, "allow", nil, "platform allow-list")
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan only, skip execution")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(connectorsCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves the config file path and loads it.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = workspace + "/.actionplan/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildPlanner wires the rule compiler with the configured default platform.
func buildPlanner(cfg *config.Config) *planner.Planner {
	c := compiler.New(cfg.DefaultPlatform(), nil)
	return planner.New(c)
}

// buildConnectors registers and initializes a sandbox connector for every
// supported platform. Real deployments replace this with platform SDK-backed
// connectors at host start-up.
func buildConnectors(ctx context.Context) (*connector.Registry, error) {
	reg := connector.NewRegistry()
	for _, p := range types.Platforms() {
		sandbox := connector.NewSandbox(p)
		if err := sandbox.Initialize(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to initialize %s sandbox: %w", p, err)
		}
		if err := reg.Register(sandbox); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildRequest assembles the planning request from flags and config defaults.
func buildRequest(cfg *config.Config, prompt string) planner.Request {
	req := planner.Request{Prompt: prompt}

	if platform != "" {
		req.Context = &types.PlanContext{Platform: types.Platform(platform)}
	}

	constraints := cfg.Constraints()
	if maxActions > 0 || len(allowList) > 0 || dryRun {
		if constraints == nil {
			constraints = &types.PolicyConstraints{}
		}
		if maxActions > 0 {
			constraints.MaxActions = maxActions
		}
		for _, p := range allowList {
			constraints.AllowedPlatforms = append(constraints.AllowedPlatforms, types.Platform(p))
		}
		constraints.DryRun = dryRun
	}
	req.Constraints = constraints

	return req
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
