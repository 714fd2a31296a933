package connector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"actionplan/internal/logging"
	"actionplan/internal/registry"
	"actionplan/internal/types"
)

// Sandbox is an in-memory connector that simulates a platform backend. It
// implements the full connector contract and is used by the CLI for local
// runs and by tests as a realistic fake. No network calls are made.
type Sandbox struct {
	platform types.Platform

	mu          sync.Mutex
	initialized bool
	customers   map[string]map[string]interface{}
	grants      map[string]string // user_id -> access_pass_id
}

// NewSandbox creates a sandbox connector for the given platform.
func NewSandbox(platform types.Platform) *Sandbox {
	return &Sandbox{
		platform:  platform,
		customers: make(map[string]map[string]interface{}),
		grants:    make(map[string]string),
	}
}

// Platform returns the platform this sandbox simulates.
func (s *Sandbox) Platform() types.Platform {
	return s.platform
}

// Initialize marks the sandbox ready. The config map is accepted for contract
// parity and ignored.
func (s *Sandbox) Initialize(ctx context.Context, config map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	logging.Connector("Sandbox(%s): initialized", s.platform)
	return nil
}

// HealthCheck reports healthy once Initialize has been called.
func (s *Sandbox) HealthCheck(ctx context.Context) HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return HealthStatus{
			Healthy: false,
			Message: "sandbox not initialized",
		}
	}
	return HealthStatus{
		Healthy: true,
		Message: "sandbox ready",
		Details: map[string]interface{}{
			"customers": len(s.customers),
			"grants":    len(s.grants),
		},
	}
}

// SupportsAction reports support for every whitelisted action type.
func (s *Sandbox) SupportsAction(t types.ActionType) bool {
	return registry.IsAllowed(t)
}

// Metadata describes the sandbox connector.
func (s *Sandbox) Metadata() Metadata {
	s.mu.Lock()
	configured := s.initialized
	s.mu.Unlock()

	capabilities := make([]types.ActionType, 0)
	for _, schema := range registry.All() {
		capabilities = append(capabilities, schema.Type)
	}
	return Metadata{
		Name:         fmt.Sprintf("%s-sandbox", s.platform),
		Version:      "1.0.0",
		Capabilities: capabilities,
		Configured:   configured,
	}
}

// ExecuteActions runs the batch sequentially, one result per action.
func (s *Sandbox) ExecuteActions(ctx context.Context, actions []types.Action) ([]types.ActionResult, error) {
	results := make([]types.ActionResult, 0, len(actions))
	for _, a := range actions {
		result, err := s.ExecuteAction(ctx, a)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ExecuteAction simulates one action and returns its result. Actions the
// sandbox cannot serve come back as failed results, not errors, so sibling
// actions in a batch are unaffected.
func (s *Sandbox) ExecuteAction(ctx context.Context, a types.Action) (types.ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return types.ActionResult{}, err
	}
	if a.Platform != s.platform {
		return types.NewFailure(a, fmt.Sprintf("sandbox for %s cannot execute %s action", s.platform, a.Platform)), nil
	}
	if !registry.IsAllowed(a.Type) {
		return types.NewFailure(a, fmt.Sprintf("action type %q is not whitelisted", a.Type)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.Type {
	case types.ActionCreateCustomer:
		email, _ := a.StringParam("email")
		id := s.newID("cus")
		record := map[string]interface{}{
			"customer_id": id,
			"email":       email,
			"created_at":  time.Now().UTC().Format(time.RFC3339),
		}
		if name, ok := a.StringParam("name"); ok {
			record["name"] = name
		}
		s.customers[id] = record
		return types.NewSuccess(a, record), nil

	case types.ActionGetCustomer:
		id, _ := a.StringParam("customer_id")
		if record, ok := s.customers[id]; ok {
			return types.NewSuccess(a, record), nil
		}
		return types.NewFailure(a, fmt.Sprintf("customer %s not found", id)), nil

	case types.ActionUpdateCustomer:
		id, _ := a.StringParam("customer_id")
		record, ok := s.customers[id]
		if !ok {
			return types.NewFailure(a, fmt.Sprintf("customer %s not found", id)), nil
		}
		if email, ok := a.StringParam("email"); ok {
			record["email"] = email
		}
		if name, ok := a.StringParam("name"); ok {
			record["name"] = name
		}
		return types.NewSuccess(a, record), nil

	case types.ActionListPayments:
		limit := paramLimit(a, 10)
		return types.NewSuccess(a, map[string]interface{}{
			"payments": s.fakeRecords("pay", limit),
			"count":    limit,
		}), nil

	case types.ActionGetPayment:
		id, _ := a.StringParam("payment_id")
		return types.NewSuccess(a, map[string]interface{}{
			"payment_id": id,
			"amount":     4900,
			"currency":   "usd",
			"status":     "succeeded",
		}), nil

	case types.ActionListSubscriptions:
		limit := paramLimit(a, 10)
		return types.NewSuccess(a, map[string]interface{}{
			"subscriptions": s.fakeRecords("sub", limit),
			"count":         limit,
		}), nil

	case types.ActionGetSubscription:
		id, _ := a.StringParam("subscription_id")
		return types.NewSuccess(a, map[string]interface{}{
			"subscription_id": id,
			"status":          "active",
		}), nil

	case types.ActionCancelSubscription:
		id, _ := a.StringParam("subscription_id")
		return types.NewSuccess(a, map[string]interface{}{
			"subscription_id": id,
			"status":          "canceled",
			"canceled_at":     time.Now().UTC().Format(time.RFC3339),
		}), nil

	case types.ActionCheckAccess:
		userID, _ := a.StringParam("user_id")
		pass, granted := s.grants[userID]
		data := map[string]interface{}{
			"user_id":    userID,
			"has_access": granted,
		}
		if granted {
			data["access_pass_id"] = pass
		}
		return types.NewSuccess(a, data), nil

	case types.ActionGrantAccess:
		userID, _ := a.StringParam("user_id")
		passID, _ := a.StringParam("access_pass_id")
		s.grants[userID] = passID
		return types.NewSuccess(a, map[string]interface{}{
			"user_id":        userID,
			"access_pass_id": passID,
			"granted":        true,
		}), nil

	case types.ActionRevokeAccess:
		userID, _ := a.StringParam("user_id")
		delete(s.grants, userID)
		return types.NewSuccess(a, map[string]interface{}{
			"user_id": userID,
			"revoked": true,
		}), nil

	case types.ActionSendNotification:
		title, _ := a.StringParam("title")
		return types.NewSuccess(a, map[string]interface{}{
			"notification_id": s.newID("ntf"),
			"title":           title,
			"delivered":       true,
		}), nil

	default:
		// Whitelisted but unhandled: keep the failure local to this action.
		return types.NewFailure(a, fmt.Sprintf("sandbox does not implement action type %q", a.Type)), nil
	}
}

func (s *Sandbox) newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func (s *Sandbox) fakeRecords(prefix string, n int) []map[string]interface{} {
	records := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, map[string]interface{}{
			"id":     fmt.Sprintf("%s_sandbox_%d", prefix, i+1),
			"amount": 1000 * (i + 1),
		})
	}
	return records
}

func paramLimit(a types.Action, fallback int) int {
	if n, ok := a.IntParam("limit"); ok && n > 0 {
		return n
	}
	return fallback
}
