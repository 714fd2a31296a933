// Package compiler turns a free-text instruction into a plan of whitelisted
// actions. Compilation is deterministic: a fixed, ordered scan of intent
// categories over the lower-cased prompt, with fixed-format sub-patterns for
// field extraction. No learned model is involved.
package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// Strategy translates a prompt into candidate actions for a target platform.
// The rule-based implementation below is the default; a model-backed strategy
// can be substituted without touching validation, policy, or execution.
type Strategy interface {
	Compile(prompt string, platform types.Platform) []types.Action
}

// Compiler produces a fresh Plan from a prompt and optional caller context.
type Compiler struct {
	strategy        Strategy
	defaultPlatform types.Platform
}

// New creates a compiler. A nil strategy falls back to the rule-based one;
// an invalid default platform falls back to stripe.
func New(defaultPlatform types.Platform, strategy Strategy) *Compiler {
	if strategy == nil {
		strategy = NewRuleStrategy()
	}
	if !defaultPlatform.Valid() {
		defaultPlatform = types.PlatformStripe
	}
	return &Compiler{strategy: strategy, defaultPlatform: defaultPlatform}
}

// Compile builds a plan from the prompt. The returned plan always contains at
// least one action: when no category matches, a small list_payments fallback
// is emitted so downstream stages never see an empty plan.
func (c *Compiler) Compile(prompt string, ctx *types.PlanContext) *types.Plan {
	timer := logging.StartTimer(logging.CategoryCompiler, "Compile")
	defer timer.Stop()

	platform := c.defaultPlatform
	if ctx != nil && ctx.Platform.Valid() {
		platform = ctx.Platform
	}

	actions := c.strategy.Compile(prompt, platform)
	if len(actions) == 0 {
		logging.CompilerDebug("Compile: no categories matched, emitting fallback action")
		fallback, err := types.NewListPayments(platform, types.ListPaymentsParams{Limit: fallbackListLimit})
		if err != nil {
			// Unreachable with a valid platform; kept so the invariant holds
			// even if the platform set changes.
			fallback = types.Action{
				Platform:   platform,
				Type:       types.ActionListPayments,
				Parameters: map[string]interface{}{"limit": fallbackListLimit},
			}
		}
		actions = []types.Action{fallback}
	}

	plan := &types.Plan{
		ID:          newPlanID(),
		Description: describe(prompt),
		Actions:     actions,
		CreatedAt:   time.Now().UTC(),
		Metadata: map[string]interface{}{
			"compiler": "rules",
			"platform": string(platform),
		},
	}
	if ctx != nil && ctx.UserID != "" {
		plan.Metadata["user_id"] = ctx.UserID
	}

	logging.Compiler("Compile: plan %s with %d action(s) for platform %s", plan.ID, len(plan.Actions), platform)
	return plan
}

// fallbackListLimit is the limit on the fallback list_payments action emitted
// when no intent category matches.
const fallbackListLimit = 5

// newPlanID generates a unique plan identifier: time-based prefix plus a
// random suffix.
func newPlanID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("plan_%d_%s", time.Now().UnixMilli(), suffix)
}

func describe(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) > 120 {
		trimmed = trimmed[:117] + "..."
	}
	if trimmed == "" {
		return "Plan from empty prompt"
	}
	return "Plan for: " + trimmed
}
