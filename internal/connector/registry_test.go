package connector

import (
	"context"
	"testing"

	"actionplan/internal/types"
)

// stubConnector is a minimal Connector for registry tests.
type stubConnector struct {
	platform types.Platform
	name     string
}

func (s *stubConnector) Platform() types.Platform { return s.platform }
func (s *stubConnector) Initialize(ctx context.Context, config map[string]interface{}) error {
	return nil
}
func (s *stubConnector) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{Healthy: true}
}
func (s *stubConnector) ExecuteAction(ctx context.Context, a types.Action) (types.ActionResult, error) {
	return types.NewSuccess(a, nil), nil
}
func (s *stubConnector) ExecuteActions(ctx context.Context, actions []types.Action) ([]types.ActionResult, error) {
	results := make([]types.ActionResult, 0, len(actions))
	for _, a := range actions {
		results = append(results, types.NewSuccess(a, nil))
	}
	return results, nil
}
func (s *stubConnector) SupportsAction(t types.ActionType) bool { return true }
func (s *stubConnector) Metadata() Metadata                     { return Metadata{Name: s.name} }

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&stubConnector{platform: types.PlatformStripe, name: "stripe-stub"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	c, ok := reg.Get(types.PlatformStripe)
	if !ok {
		t.Fatal("Connector not found after registration")
	}
	if c.Metadata().Name != "stripe-stub" {
		t.Errorf("Unexpected connector: %s", c.Metadata().Name)
	}

	if !reg.Has(types.PlatformStripe) {
		t.Error("Has must report a registered platform")
	}
	if reg.Has(types.PlatformWhop) {
		t.Error("Has must not report an unregistered platform")
	}
	if _, ok := reg.Get(types.PlatformWhop); ok {
		t.Error("Get must miss for an unregistered platform")
	}
}

func TestRegistry_RejectsNilAndEmptyPlatform(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(nil); err == nil {
		t.Error("Expected error for nil connector")
	}
	if err := reg.Register(&stubConnector{platform: ""}); err == nil {
		t.Error("Expected error for empty platform")
	}
}

func TestRegistry_ListInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&stubConnector{platform: types.PlatformWhop, name: "whop-stub"})
	_ = reg.Register(&stubConnector{platform: types.PlatformStripe, name: "stripe-stub"})

	got := reg.List()
	if len(got) != 2 || got[0] != types.PlatformWhop || got[1] != types.PlatformStripe {
		t.Errorf("Expected [whop stripe], got %v", got)
	}
}

func TestRegistry_ReRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&stubConnector{platform: types.PlatformStripe, name: "first"})
	_ = reg.Register(&stubConnector{platform: types.PlatformStripe, name: "second"})

	c, _ := reg.Get(types.PlatformStripe)
	if c.Metadata().Name != "second" {
		t.Errorf("Expected replacement, got %s", c.Metadata().Name)
	}
	if len(reg.List()) != 1 {
		t.Errorf("Replacement must not duplicate the platform in List: %v", reg.List())
	}
}
