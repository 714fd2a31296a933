// Package planner composes the planning pipeline: compile, structural
// validation, per-action validation, then the policy gate. It is the entry
// point host applications call before execution. No failure in any stage
// escapes as a panic; everything is reported in the response.
package planner

import (
	"fmt"

	"actionplan/internal/compiler"
	"actionplan/internal/logging"
	"actionplan/internal/policy"
	"actionplan/internal/types"
	"actionplan/internal/validate"
)

// Request is the input to PlanFromPrompt.
type Request struct {
	Prompt      string                   `json:"prompt"`
	Context     *types.PlanContext       `json:"context,omitempty"`
	Constraints *types.PolicyConstraints `json:"constraints,omitempty"`
}

// Response reports the outcome of a planning run. On validation failure no
// plan is returned and every violation appears in ValidationErrors.
type Response struct {
	Success          bool        `json:"success"`
	Plan             *types.Plan `json:"plan,omitempty"`
	Error            string      `json:"error,omitempty"`
	ValidationErrors []string    `json:"validation_errors,omitempty"`
}

// Planner drives the compile -> validate -> gate pipeline.
type Planner struct {
	compiler *compiler.Compiler
}

// New creates a planner around the given compiler. A nil compiler gets the
// default rule-based one targeting stripe.
func New(c *compiler.Compiler) *Planner {
	if c == nil {
		c = compiler.New(types.PlatformStripe, nil)
	}
	return &Planner{compiler: c}
}

// PlanFromPrompt compiles the prompt, validates the plan structurally, then
// validates every action, then applies the policy gate. It short-circuits
// with aggregated validation errors on the first failing stage. Unexpected
// failures inside any stage are caught and reported as a generic planning
// failure with the underlying message attached.
func (p *Planner) PlanFromPrompt(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logging.PlannerError("PlanFromPrompt: recovered from panic: %v", r)
			resp = Response{
				Success: false,
				Error:   fmt.Sprintf("planning failed: %v", r),
			}
		}
	}()

	logging.Planner("PlanFromPrompt: compiling prompt (%d chars)", len(req.Prompt))

	plan := p.compiler.Compile(req.Prompt, req.Context)

	if errs := validate.Plan(plan); len(errs) > 0 {
		logging.PlannerError("PlanFromPrompt: plan %s failed structural validation", plan.ID)
		return Response{
			Success:          false,
			Error:            "plan failed structural validation",
			ValidationErrors: errs.Strings(),
		}
	}

	if errs := validate.Actions(plan); len(errs) > 0 {
		logging.PlannerError("PlanFromPrompt: plan %s failed action validation with %d error(s)", plan.ID, len(errs))
		return Response{
			Success:          false,
			Error:            "plan contains invalid actions",
			ValidationErrors: errs.Strings(),
		}
	}

	gated := policy.Apply(plan, req.Constraints)

	logging.Planner("PlanFromPrompt: plan %s ready with %d action(s)", gated.ID, len(gated.Actions))
	return Response{Success: true, Plan: gated}
}
