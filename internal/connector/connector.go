// Package connector defines the platform connector contract and the runtime
// registry the execution engine dispatches through. Connectors are owned by
// the host application and registered once at start-up; the registry is
// effectively read-only during plan execution.
package connector

import (
	"context"

	"actionplan/internal/types"
)

// HealthStatus is the outcome of a connector health probe.
type HealthStatus struct {
	Healthy bool                   `json:"healthy"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Metadata describes a connector for host-side capability checks. The engine
// itself never consults it.
type Metadata struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Capabilities []types.ActionType `json:"capabilities"`
	Configured   bool               `json:"configured"`
}

// Connector is the capability contract a platform executor must satisfy.
// ExecuteAction and ExecuteActions are the only calls the engine makes during
// a plan run; Initialize and HealthCheck are lifecycle hooks outside that
// path. Internal batching, auth, and latency characteristics are opaque to
// the planning core.
type Connector interface {
	// Platform returns the identifier this connector serves.
	Platform() types.Platform

	// Initialize prepares the connector with host-supplied configuration.
	Initialize(ctx context.Context, config map[string]interface{}) error

	// HealthCheck probes the connector's backing service.
	HealthCheck(ctx context.Context) HealthStatus

	// ExecuteAction runs a single action.
	ExecuteAction(ctx context.Context, action types.Action) (types.ActionResult, error)

	// ExecuteActions runs a batch of actions, returning one result per action.
	ExecuteActions(ctx context.Context, actions []types.Action) ([]types.ActionResult, error)

	// SupportsAction reports whether the connector can execute the given type.
	SupportsAction(t types.ActionType) bool

	// Metadata returns introspection data about the connector.
	Metadata() Metadata
}
