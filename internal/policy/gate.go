// Package policy applies caller-supplied constraints to an already-valid plan.
// The gate only ever removes actions, so it cannot introduce a schema
// violation and its output is never re-validated.
package policy

import (
	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// Apply enforces the constraints in a fixed order: prefix truncation by
// MaxActions first, then the platform allow-list filter. Both preserve the
// original relative order of surviving actions. The plan is finally stamped
// with provenance metadata for auditability. DryRun is recorded but never
// interpreted here; it is the caller's signal to skip execution entirely.
//
// The input plan is not mutated; the returned plan shares its identity fields
// with a fresh action slice and metadata map.
func Apply(p *types.Plan, constraints *types.PolicyConstraints) *types.Plan {
	if p == nil {
		return nil
	}

	actions := make([]types.Action, len(p.Actions))
	copy(actions, p.Actions)

	if constraints != nil {
		if constraints.MaxActions > 0 && len(actions) > constraints.MaxActions {
			logging.Policy("Apply: plan %s truncated from %d to %d action(s)", p.ID, len(actions), constraints.MaxActions)
			actions = actions[:constraints.MaxActions]
		}

		if len(constraints.AllowedPlatforms) > 0 {
			allowed := make(map[types.Platform]bool, len(constraints.AllowedPlatforms))
			for _, pf := range constraints.AllowedPlatforms {
				allowed[pf] = true
			}
			kept := actions[:0]
			for _, a := range actions {
				if allowed[a.Platform] {
					kept = append(kept, a)
				}
			}
			if len(kept) < len(actions) {
				logging.Policy("Apply: plan %s dropped %d action(s) outside platform allow-list", p.ID, len(actions)-len(kept))
			}
			actions = kept
		}
	}

	metadata := make(map[string]interface{}, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		metadata[k] = v
	}
	metadata["gatesApplied"] = true
	metadata["constraints"] = constraintsRecord(constraints)

	gated := &types.Plan{
		ID:          p.ID,
		Description: p.Description,
		Actions:     actions,
		CreatedAt:   p.CreatedAt,
		Metadata:    metadata,
	}

	logging.PolicyDebug("Apply: plan %s gated, %d of %d action(s) survive", p.ID, len(actions), len(p.Actions))
	return gated
}

// constraintsRecord captures the applied constraints in a plain map so the
// audit trail serializes cleanly.
func constraintsRecord(c *types.PolicyConstraints) map[string]interface{} {
	record := map[string]interface{}{}
	if c == nil {
		return record
	}
	if c.MaxActions > 0 {
		record["max_actions"] = c.MaxActions
	}
	if len(c.AllowedPlatforms) > 0 {
		platforms := make([]string, 0, len(c.AllowedPlatforms))
		for _, p := range c.AllowedPlatforms {
			platforms = append(platforms, string(p))
		}
		record["allowed_platforms"] = platforms
	}
	if c.DryRun {
		record["dry_run"] = true
	}
	return record
}
