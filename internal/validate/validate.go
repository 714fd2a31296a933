// Package validate checks plans and actions against the action registry.
// The structural plan pass and the per-action schema pass are independent so
// callers can re-check plans compiled outside this process. Both passes
// aggregate every violation instead of failing fast.
package validate

import (
	"fmt"

	"actionplan/internal/logging"
	"actionplan/internal/registry"
	"actionplan/internal/types"
)

// Plan performs structural validation of the plan shape only. Individual
// actions are validated separately by Actions.
func Plan(p *types.Plan) types.ValidationErrors {
	var errs types.ValidationErrors

	if p == nil {
		return types.ValidationErrors{{Path: "plan", Message: "plan is required"}}
	}
	if p.ID == "" {
		errs = append(errs, types.FieldError{Path: "id", Message: "id is required"})
	}
	if p.Description == "" {
		errs = append(errs, types.FieldError{Path: "description", Message: "description is required"})
	}
	if p.CreatedAt.IsZero() {
		errs = append(errs, types.FieldError{Path: "created_at", Message: "creation timestamp is required"})
	}
	if p.Actions == nil {
		errs = append(errs, types.FieldError{Path: "actions", Message: "actions are required"})
	} else if len(p.Actions) == 0 {
		errs = append(errs, types.FieldError{Path: "actions", Message: "plan must contain at least one action"})
	}

	if len(errs) > 0 {
		logging.Validate("Plan: structural validation failed with %d error(s)", len(errs))
		return errs
	}
	logging.ValidateDebug("Plan: %s structurally valid (%d actions)", p.ID, len(p.Actions))
	return nil
}

// Action validates a single action against its declared type's schema.
// An action whose type is not in the whitelist is rejected outright, never
// coerced into a known variant. Paths in the returned errors are relative to
// the action itself.
func Action(a types.Action) types.ValidationErrors {
	var errs types.ValidationErrors

	if !a.Platform.Valid() {
		errs = append(errs, types.FieldError{
			Path:    "platform",
			Message: fmt.Sprintf("unknown platform %q", a.Platform),
		})
	}

	schema, ok := registry.Lookup(a.Type)
	if !ok {
		errs = append(errs, types.FieldError{
			Path:    "type",
			Message: fmt.Sprintf("action type %q is not whitelisted", a.Type),
		})
		// Without a schema there is nothing meaningful to check parameters
		// against.
		return errs
	}

	// Required fields must be present and well-formed.
	for _, f := range schema.Fields {
		value, present := a.Parameters[f.Name]
		if !present {
			if f.Required {
				errs = append(errs, types.FieldError{
					Path:    "parameters." + f.Name,
					Message: "required field is missing",
				})
			}
			continue
		}
		if err := registry.CheckValue(f, value); err != nil {
			errs = append(errs, types.FieldError{
				Path:    "parameters." + f.Name,
				Message: err.Error(),
			})
		}
	}

	// The parameter record must match the schema exactly: fields belonging to
	// other action types are rejected, not ignored.
	for name := range a.Parameters {
		if _, declared := schema.Field(name); !declared {
			errs = append(errs, types.FieldError{
				Path:    "parameters." + name,
				Message: fmt.Sprintf("field is not part of the %s schema", a.Type),
			})
		}
	}

	return errs
}

// Actions validates every action in the plan, prefixing error paths with the
// action index (e.g. "actions[2].parameters.email"). All violations across
// all actions are aggregated.
func Actions(p *types.Plan) types.ValidationErrors {
	if p == nil {
		return types.ValidationErrors{{Path: "plan", Message: "plan is required"}}
	}

	var errs types.ValidationErrors
	for i, a := range p.Actions {
		for _, e := range Action(a) {
			errs = append(errs, types.FieldError{
				Path:    fmt.Sprintf("actions[%d].%s", i, e.Path),
				Message: e.Message,
			})
		}
	}

	if len(errs) > 0 {
		logging.Validate("Actions: plan %s failed with %d error(s)", p.ID, len(errs))
	} else {
		logging.ValidateDebug("Actions: plan %s all %d action(s) valid", p.ID, len(p.Actions))
	}
	return errs
}
