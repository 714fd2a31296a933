package connector

import (
	"fmt"
	"sync"

	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// Registry is a keyed store of connectors by platform. It is populated once
// at host start-up and injected into the engine, so tests can supply fakes
// without global setup or teardown.
type Registry struct {
	mu         sync.RWMutex
	connectors map[types.Platform]Connector
	// order preserves registration order so List and group dispatch are
	// deterministic.
	order []types.Platform
}

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[types.Platform]Connector),
	}
}

// Register adds a connector for its platform. Registering a second connector
// for the same platform replaces the first.
func (r *Registry) Register(c Connector) error {
	if c == nil {
		logging.ConnectorError("Register: connector cannot be nil")
		return fmt.Errorf("connector cannot be nil")
	}
	platform := c.Platform()
	if platform == "" {
		logging.ConnectorError("Register: connector platform cannot be empty")
		return fmt.Errorf("connector platform cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[platform]; !exists {
		r.order = append(r.order, platform)
	}
	r.connectors[platform] = c

	logging.Connector("Register: connector %s registered for platform %s", c.Metadata().Name, platform)
	return nil
}

// Get returns the connector for the platform, if registered.
func (r *Registry) Get(platform types.Platform) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[platform]
	return c, ok
}

// Has reports whether a connector is registered for the platform.
func (r *Registry) Has(platform types.Platform) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connectors[platform]
	return ok
}

// List returns the registered platforms in registration order.
func (r *Registry) List() []types.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Platform, len(r.order))
	copy(out, r.order)
	return out
}
