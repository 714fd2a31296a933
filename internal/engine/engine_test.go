package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"actionplan/internal/connector"
	"actionplan/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConnector lets tests script batch behavior per platform.
type fakeConnector struct {
	platform types.Platform
	// fail makes ExecuteActions return this error for every batch.
	fail error
	// panicMsg makes ExecuteActions panic.
	panicMsg string
	// shortchange makes ExecuteActions drop the last result.
	shortchange bool
}

func (f *fakeConnector) Platform() types.Platform { return f.platform }
func (f *fakeConnector) Initialize(ctx context.Context, config map[string]interface{}) error {
	return nil
}
func (f *fakeConnector) HealthCheck(ctx context.Context) connector.HealthStatus {
	return connector.HealthStatus{Healthy: true}
}
func (f *fakeConnector) ExecuteAction(ctx context.Context, a types.Action) (types.ActionResult, error) {
	results, err := f.ExecuteActions(ctx, []types.Action{a})
	if err != nil {
		return types.ActionResult{}, err
	}
	return results[0], nil
}
func (f *fakeConnector) ExecuteActions(ctx context.Context, actions []types.Action) ([]types.ActionResult, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.fail != nil {
		return nil, f.fail
	}
	results := make([]types.ActionResult, 0, len(actions))
	for _, a := range actions {
		results = append(results, types.NewSuccess(a, map[string]interface{}{"ok": true}))
	}
	if f.shortchange && len(results) > 0 {
		results = results[:len(results)-1]
	}
	return results, nil
}
func (f *fakeConnector) SupportsAction(t types.ActionType) bool { return true }
func (f *fakeConnector) Metadata() connector.Metadata {
	return connector.Metadata{Name: string(f.platform) + "-fake"}
}

func registryWith(t *testing.T, connectors ...connector.Connector) *connector.Registry {
	t.Helper()
	reg := connector.NewRegistry()
	for _, c := range connectors {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return reg
}

func testPlan(actions ...types.Action) *types.Plan {
	return &types.Plan{
		ID:          "plan_engine_test",
		Description: "engine test",
		Actions:     actions,
		CreatedAt:   time.Now(),
	}
}

func action(platform types.Platform, at types.ActionType, id string) types.Action {
	return types.Action{
		Platform:   platform,
		Type:       at,
		Parameters: map[string]interface{}{"marker": id},
	}
}

func TestExecutePlan_AllSuccess(t *testing.T) {
	e := New(registryWith(t,
		&fakeConnector{platform: types.PlatformStripe},
		&fakeConnector{platform: types.PlatformWhop},
	))
	plan := testPlan(
		action(types.PlatformStripe, types.ActionListPayments, "a"),
		action(types.PlatformWhop, types.ActionCheckAccess, "b"),
		action(types.PlatformStripe, types.ActionListSubscriptions, "c"),
	)

	result := e.ExecutePlan(context.Background(), plan)

	if !result.Success {
		t.Error("Expected overall success")
	}
	if result.PlanID != plan.ID {
		t.Errorf("Expected plan id echo, got %s", result.PlanID)
	}
	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result.Results))
	}
	if result.Duration < 0 {
		t.Error("Duration must be non-negative")
	}
}

func TestExecutePlan_PartitionMergeRoundTrip(t *testing.T) {
	e := New(registryWith(t,
		&fakeConnector{platform: types.PlatformStripe},
		&fakeConnector{platform: types.PlatformWhop},
	))
	plan := testPlan(
		action(types.PlatformStripe, types.ActionListPayments, "s1"),
		action(types.PlatformWhop, types.ActionCheckAccess, "w1"),
		action(types.PlatformStripe, types.ActionGetPayment, "s2"),
		action(types.PlatformWhop, types.ActionGrantAccess, "w2"),
		action(types.PlatformStripe, types.ActionListSubscriptions, "s3"),
	)

	result := e.ExecutePlan(context.Background(), plan)

	// The multiset of actions recovered from the results must equal the
	// multiset of submitted actions.
	want := countActions(plan.Actions)
	got := map[string]int{}
	for _, r := range result.Results {
		got[actionKey(r.Action)]++
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Action multiset mismatch (-want +got):\n%s", diff)
	}

	// Within a platform group the original index order is preserved.
	var stripeMarkers []string
	for _, r := range result.Results {
		if r.Action.Platform == types.PlatformStripe {
			stripeMarkers = append(stripeMarkers, r.Action.Parameters["marker"].(string))
		}
	}
	if diff := cmp.Diff([]string{"s1", "s2", "s3"}, stripeMarkers); diff != "" {
		t.Errorf("Intra-group order broken (-want +got):\n%s", diff)
	}
}

func TestExecutePlan_MissingConnectorIsolation(t *testing.T) {
	// Two actions on stripe (registered), one on whop (absent): the run must
	// report success=false with 3 results, exactly one of them failed.
	e := New(registryWith(t, &fakeConnector{platform: types.PlatformStripe}))
	plan := testPlan(
		action(types.PlatformStripe, types.ActionListPayments, "a"),
		action(types.PlatformStripe, types.ActionGetPayment, "b"),
		action(types.PlatformWhop, types.ActionCheckAccess, "c"),
	)

	result := e.ExecutePlan(context.Background(), plan)

	if result.Success {
		t.Error("Expected overall failure")
	}
	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result.Results))
	}
	failures := 0
	for _, r := range result.Results {
		if !r.Success {
			failures++
			if !strings.Contains(r.Error, "no connector registered") || !strings.Contains(r.Error, "whop") {
				t.Errorf("Expected missing-platform error, got %q", r.Error)
			}
		} else if r.Data == nil {
			t.Error("Successful sibling results must keep their data")
		}
	}
	if failures != 1 {
		t.Errorf("Expected exactly 1 failure, got %d", failures)
	}
}

func TestExecutePlan_ConnectorErrorFailsWholeGroupOnly(t *testing.T) {
	e := New(registryWith(t,
		&fakeConnector{platform: types.PlatformStripe, fail: errors.New("upstream 503")},
		&fakeConnector{platform: types.PlatformWhop},
	))
	plan := testPlan(
		action(types.PlatformStripe, types.ActionListPayments, "a"),
		action(types.PlatformStripe, types.ActionGetPayment, "b"),
		action(types.PlatformWhop, types.ActionCheckAccess, "c"),
	)

	result := e.ExecutePlan(context.Background(), plan)

	if result.Success {
		t.Error("Expected overall failure")
	}
	if len(result.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		switch r.Action.Platform {
		case types.PlatformStripe:
			if r.Success || r.Error != "upstream 503" {
				t.Errorf("Expected connector error message, got success=%v error=%q", r.Success, r.Error)
			}
		case types.PlatformWhop:
			if !r.Success {
				t.Errorf("Sibling group must be unaffected, got %q", r.Error)
			}
		}
	}
}

func TestExecutePlan_ConnectorPanicIsCaptured(t *testing.T) {
	e := New(registryWith(t,
		&fakeConnector{platform: types.PlatformStripe, panicMsg: "boom"},
	))
	plan := testPlan(action(types.PlatformStripe, types.ActionListPayments, "a"))

	result := e.ExecutePlan(context.Background(), plan)

	if result.Success {
		t.Error("Expected failure after connector panic")
	}
	if len(result.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(result.Results))
	}
	if !strings.Contains(result.Results[0].Error, "boom") {
		t.Errorf("Expected panic message in error, got %q", result.Results[0].Error)
	}
}

func TestExecutePlan_ShortBatchSynthesizesFailures(t *testing.T) {
	e := New(registryWith(t,
		&fakeConnector{platform: types.PlatformStripe, shortchange: true},
	))
	plan := testPlan(
		action(types.PlatformStripe, types.ActionListPayments, "a"),
		action(types.PlatformStripe, types.ActionGetPayment, "b"),
	)

	result := e.ExecutePlan(context.Background(), plan)

	if result.Success {
		t.Error("Expected failure for count mismatch")
	}
	if len(result.Results) != 2 {
		t.Fatalf("One result per submitted action is mandatory, got %d", len(result.Results))
	}
}

func TestExecutePlan_NilAndEmptyPlans(t *testing.T) {
	e := New(registryWith(t, &fakeConnector{platform: types.PlatformStripe}))

	result := e.ExecutePlan(context.Background(), nil)
	if result.Success || len(result.Results) != 0 {
		t.Errorf("Nil plan must yield empty failed result, got %+v", result)
	}

	result = e.ExecutePlan(context.Background(), testPlan())
	if !result.Success {
		t.Error("Empty plan executes vacuously successfully")
	}
	if len(result.Results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(result.Results))
	}
}

func TestExecuteAction_ConveniencePath(t *testing.T) {
	e := New(registryWith(t, &fakeConnector{platform: types.PlatformStripe}))

	ok := e.ExecuteAction(context.Background(), action(types.PlatformStripe, types.ActionListPayments, "a"))
	if !ok.Success {
		t.Errorf("Expected success, got %q", ok.Error)
	}

	missing := e.ExecuteAction(context.Background(), action(types.PlatformWhop, types.ActionCheckAccess, "b"))
	if missing.Success {
		t.Error("Expected failure for missing connector")
	}
	if !strings.Contains(missing.Error, "no connector registered") {
		t.Errorf("Expected missing-platform error, got %q", missing.Error)
	}
}

func countActions(actions []types.Action) map[string]int {
	counts := map[string]int{}
	for _, a := range actions {
		counts[actionKey(a)]++
	}
	return counts
}

func actionKey(a types.Action) string {
	marker, _ := a.Parameters["marker"].(string)
	return string(a.Platform) + "/" + string(a.Type) + "/" + marker
}
