// Package types provides shared type definitions used across actionplan packages.
// This package exists to break import cycles between compiler, validate, policy,
// and engine. Types in this package should be foundational data structures with
// no complex dependencies.
package types

import (
	"fmt"
	"time"
)

// =============================================================================
// PLATFORMS
// =============================================================================

// Platform identifies a target system an action is dispatched to.
// The set of platforms is closed; anything else is invalid by construction.
type Platform string

const (
	PlatformStripe Platform = "stripe"
	PlatformWhop   Platform = "whop"
)

// Platforms returns the closed set of supported platforms in stable order.
func Platforms() []Platform {
	return []Platform{PlatformStripe, PlatformWhop}
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformStripe, PlatformWhop:
		return true
	default:
		return false
	}
}

// =============================================================================
// ACTION TYPES
// =============================================================================

// ActionType is the discriminant of the Action tagged union. Only values in
// the whitelist (see internal/registry) are ever executed.
type ActionType string

const (
	ActionCreateCustomer     ActionType = "create_customer"
	ActionGetCustomer        ActionType = "get_customer"
	ActionUpdateCustomer     ActionType = "update_customer"
	ActionListPayments       ActionType = "list_payments"
	ActionGetPayment         ActionType = "get_payment"
	ActionListSubscriptions  ActionType = "list_subscriptions"
	ActionGetSubscription    ActionType = "get_subscription"
	ActionCancelSubscription ActionType = "cancel_subscription"
	ActionCheckAccess        ActionType = "check_access"
	ActionGrantAccess        ActionType = "grant_access"
	ActionRevokeAccess       ActionType = "revoke_access"
	ActionSendNotification   ActionType = "send_notification"
)

// =============================================================================
// ACTION AND PLAN
// =============================================================================

// Action is one whitelisted, typed operation targeting a specific platform.
// Parameters is the wire form of the per-type parameter record; its shape must
// match the type's declared schema exactly.
type Action struct {
	Platform       Platform               `json:"platform"`
	Type           ActionType             `json:"type"`
	Parameters     map[string]interface{} `json:"parameters"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
}

// Plan is an ordered collection of actions plus identifying metadata.
// Actions preserve insertion order; policy truncation and engine grouping
// depend on that order for determinism.
type Plan struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Actions     []Action               `json:"actions"`
	CreatedAt   time.Time              `json:"created_at"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// PlanContext carries caller-supplied context into compilation.
type PlanContext struct {
	Platform Platform               `json:"platform,omitempty"`
	UserID   string                 `json:"user_id,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PolicyConstraints are caller-supplied limits applied by the policy gate.
// MaxActions of zero means unlimited. DryRun is a pass-through flag: the gate
// records it but never interprets it.
type PolicyConstraints struct {
	MaxActions       int        `json:"max_actions,omitempty"`
	AllowedPlatforms []Platform `json:"allowed_platforms,omitempty"`
	DryRun           bool       `json:"dry_run,omitempty"`
}

// =============================================================================
// EXECUTION RESULTS
// =============================================================================

// ActionResult is the outcome of executing a single action. Data is present
// iff Success is true; Error is present iff Success is false. Use NewSuccess
// and NewFailure to preserve that invariant.
type ActionResult struct {
	Success    bool                   `json:"success"`
	Action     Action                 `json:"action"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	ExecutedAt time.Time              `json:"executed_at"`
}

// NewSuccess builds a successful result for the given action.
func NewSuccess(a Action, data map[string]interface{}) ActionResult {
	return ActionResult{
		Success:    true,
		Action:     a,
		Data:       data,
		ExecutedAt: time.Now(),
	}
}

// NewFailure builds a failed result for the given action.
func NewFailure(a Action, message string) ActionResult {
	return ActionResult{
		Success:    false,
		Action:     a,
		Error:      message,
		ExecutedAt: time.Now(),
	}
}

// PlanResult is the aggregated outcome of executing a plan. Success is true
// iff every individual ActionResult succeeded; partial successes are still
// reported alongside failures.
type PlanResult struct {
	PlanID     string         `json:"plan_id"`
	Success    bool           `json:"success"`
	Results    []ActionResult `json:"results"`
	ExecutedAt time.Time      `json:"executed_at"`
	Duration   time.Duration  `json:"duration"`
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// FieldError reports one validation violation as a path plus reason,
// e.g. "actions[2].parameters.email: invalid email address".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors aggregates every violation found in a validation pass.
// Validation is aggregate, not fail-fast: all simultaneous violations are
// surfaced together.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	if len(v) == 1 {
		return v[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
}

// Strings flattens the errors into "path: message" strings for API responses.
func (v ValidationErrors) Strings() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Error())
	}
	return out
}
