// Package engine executes validated, gated plans against registered
// connectors. Failure is isolated per action: a missing connector or a failing
// batch never aborts sibling platform groups, and every submitted action is
// accounted for by exactly one result.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"actionplan/internal/connector"
	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// Engine dispatches plan actions to platform connectors and merges the
// outcomes. The connector registry is injected at construction and treated as
// read-only during execution.
type Engine struct {
	connectors *connector.Registry
}

// New creates an engine over the given connector registry.
func New(registry *connector.Registry) *Engine {
	if registry == nil {
		registry = connector.NewRegistry()
	}
	return &Engine{connectors: registry}
}

// platformGroup is one stable partition of a plan's actions.
type platformGroup struct {
	platform types.Platform
	actions  []types.Action
}

// ExecutePlan runs every action in the plan and returns one result per
// action. Actions are partitioned by platform preserving their original
// order within each group; groups are dispatched concurrently and their
// results concatenated in group order, then intra-group order. The engine
// imposes no timeout or retry of its own; ctx is passed through so connectors
// can honor cancellation.
func (e *Engine) ExecutePlan(ctx context.Context, plan *types.Plan) *types.PlanResult {
	start := time.Now()

	if plan == nil {
		return &types.PlanResult{
			Success:    false,
			Results:    []types.ActionResult{},
			ExecutedAt: start,
			Duration:   time.Since(start),
		}
	}

	logging.Engine("ExecutePlan: plan %s with %d action(s)", plan.ID, len(plan.Actions))

	groups := partition(plan.Actions)
	groupResults := make([][]types.ActionResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			groupResults[i] = e.executeGroup(gctx, group)
			return nil
		})
	}
	// Group closures never return errors; every outcome is captured in
	// groupResults.
	_ = g.Wait()

	results := make([]types.ActionResult, 0, len(plan.Actions))
	success := true
	for _, gr := range groupResults {
		for _, r := range gr {
			if !r.Success {
				success = false
			}
			results = append(results, r)
		}
	}

	duration := time.Since(start)
	logging.Engine("ExecutePlan: plan %s finished success=%v in %v", plan.ID, success, duration)

	return &types.PlanResult{
		PlanID:     plan.ID,
		Success:    success,
		Results:    results,
		ExecutedAt: start,
		Duration:   duration,
	}
}

// ExecuteAction is the single-action convenience path. It carries the same
// failure-isolation contract as ExecutePlan: connector absence or failure is
// reported in the result, never raised.
func (e *Engine) ExecuteAction(ctx context.Context, action types.Action) types.ActionResult {
	results := e.executeGroup(ctx, platformGroup{
		platform: action.Platform,
		actions:  []types.Action{action},
	})
	return results[0]
}

// executeGroup dispatches one platform group through its connector,
// synthesizing failed results when no connector is registered, when the
// connector's batch call errors or panics, or when it returns the wrong
// number of results.
func (e *Engine) executeGroup(ctx context.Context, group platformGroup) (results []types.ActionResult) {
	c, ok := e.connectors.Get(group.platform)
	if !ok {
		logging.EngineWarn("executeGroup: no connector registered for platform %s (%d actions)", group.platform, len(group.actions))
		return failGroup(group, fmt.Sprintf("no connector registered for platform %q", group.platform))
	}

	defer func() {
		if r := recover(); r != nil {
			logging.EngineError("executeGroup: connector for %s panicked: %v", group.platform, r)
			results = failGroup(group, fmt.Sprintf("connector panic: %v", r))
		}
	}()

	batch, err := c.ExecuteActions(ctx, group.actions)
	if err != nil {
		logging.EngineError("executeGroup: connector for %s failed: %v", group.platform, err)
		return failGroup(group, connectorErrorMessage(err))
	}
	if len(batch) != len(group.actions) {
		logging.EngineError("executeGroup: connector for %s returned %d result(s) for %d action(s)", group.platform, len(batch), len(group.actions))
		return failGroup(group, fmt.Sprintf("connector returned %d results for %d actions", len(batch), len(group.actions)))
	}
	return batch
}

// partition groups actions by platform in first-appearance order, preserving
// each action's original index order within its group. This is a stable
// partition, not a sort.
func partition(actions []types.Action) []platformGroup {
	var groups []platformGroup
	index := make(map[types.Platform]int)
	for _, a := range actions {
		i, seen := index[a.Platform]
		if !seen {
			i = len(groups)
			index[a.Platform] = i
			groups = append(groups, platformGroup{platform: a.Platform})
		}
		groups[i].actions = append(groups[i].actions, a)
	}
	return groups
}

func failGroup(group platformGroup, message string) []types.ActionResult {
	results := make([]types.ActionResult, 0, len(group.actions))
	for _, a := range group.actions {
		results = append(results, types.NewFailure(a, message))
	}
	return results
}

func connectorErrorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "connector execution failed"
	}
	return err.Error()
}
