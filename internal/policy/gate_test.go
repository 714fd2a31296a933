package policy

import (
	"testing"
	"time"

	"actionplan/internal/types"
)

func planWith(actions ...types.Action) *types.Plan {
	return &types.Plan{
		ID:          "plan_gate_test",
		Description: "gate test",
		Actions:     actions,
		CreatedAt:   time.Now(),
		Metadata:    map[string]interface{}{"compiler": "rules"},
	}
}

func action(platform types.Platform, t types.ActionType) types.Action {
	return types.Action{Platform: platform, Type: t, Parameters: map[string]interface{}{}}
}

func TestApply_TruncatesToPrefix(t *testing.T) {
	p := planWith(
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformStripe, types.ActionListSubscriptions),
		action(types.PlatformWhop, types.ActionCheckAccess),
	)

	gated := Apply(p, &types.PolicyConstraints{MaxActions: 2})

	if len(gated.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(gated.Actions))
	}
	if gated.Actions[0].Type != types.ActionListPayments || gated.Actions[1].Type != types.ActionListSubscriptions {
		t.Error("Truncation must keep the original first N actions in order")
	}
}

func TestApply_MaxActionsLargerThanPlan(t *testing.T) {
	p := planWith(action(types.PlatformStripe, types.ActionListPayments))
	gated := Apply(p, &types.PolicyConstraints{MaxActions: 10})
	if len(gated.Actions) != 1 {
		t.Fatalf("Expected 1 action, got %d", len(gated.Actions))
	}
}

func TestApply_PlatformFilterPreservesOrder(t *testing.T) {
	p := planWith(
		action(types.PlatformWhop, types.ActionCheckAccess),
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformWhop, types.ActionGrantAccess),
	)

	gated := Apply(p, &types.PolicyConstraints{AllowedPlatforms: []types.Platform{types.PlatformWhop}})

	if len(gated.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(gated.Actions))
	}
	for i, a := range gated.Actions {
		if a.Platform != types.PlatformWhop {
			t.Errorf("Action %d survived with disallowed platform %s", i, a.Platform)
		}
	}
	if gated.Actions[0].Type != types.ActionCheckAccess || gated.Actions[1].Type != types.ActionGrantAccess {
		t.Error("Filter must preserve the relative order of survivors")
	}
}

func TestApply_TruncationBeforeFilter(t *testing.T) {
	// MaxActions applies first; the whop action past the cut must not
	// survive even though the filter would allow it.
	p := planWith(
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformStripe, types.ActionListSubscriptions),
		action(types.PlatformWhop, types.ActionCheckAccess),
	)

	gated := Apply(p, &types.PolicyConstraints{
		MaxActions:       2,
		AllowedPlatforms: []types.Platform{types.PlatformWhop},
	})

	if len(gated.Actions) != 0 {
		t.Fatalf("Expected 0 actions, got %d", len(gated.Actions))
	}
}

func TestApply_StampsMetadata(t *testing.T) {
	p := planWith(action(types.PlatformStripe, types.ActionListPayments))
	constraints := &types.PolicyConstraints{MaxActions: 5, DryRun: true}

	gated := Apply(p, constraints)

	if gated.Metadata["gatesApplied"] != true {
		t.Error("Expected gatesApplied to be stamped")
	}
	record, ok := gated.Metadata["constraints"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected constraints record, got %T", gated.Metadata["constraints"])
	}
	if record["max_actions"] != 5 {
		t.Errorf("Expected max_actions 5 in record, got %v", record["max_actions"])
	}
	if record["dry_run"] != true {
		t.Errorf("Expected dry_run recorded, got %v", record["dry_run"])
	}
	// Pre-existing metadata survives.
	if gated.Metadata["compiler"] != "rules" {
		t.Error("Expected existing metadata to be preserved")
	}
}

func TestApply_NilConstraintsStillStamps(t *testing.T) {
	p := planWith(action(types.PlatformStripe, types.ActionListPayments))
	gated := Apply(p, nil)

	if len(gated.Actions) != 1 {
		t.Fatalf("Expected all actions to survive, got %d", len(gated.Actions))
	}
	if gated.Metadata["gatesApplied"] != true {
		t.Error("Expected gatesApplied stamp even without constraints")
	}
}

func TestApply_DryRunHasNoEffectOnActions(t *testing.T) {
	p := planWith(
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformWhop, types.ActionCheckAccess),
	)
	gated := Apply(p, &types.PolicyConstraints{DryRun: true})
	if len(gated.Actions) != 2 {
		t.Fatalf("DryRun must not drop actions, got %d", len(gated.Actions))
	}
}

func TestApply_InputPlanNotMutated(t *testing.T) {
	p := planWith(
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformWhop, types.ActionCheckAccess),
	)
	_ = Apply(p, &types.PolicyConstraints{MaxActions: 1})

	if len(p.Actions) != 2 {
		t.Error("Apply must not mutate the input plan's actions")
	}
	if _, stamped := p.Metadata["gatesApplied"]; stamped {
		t.Error("Apply must not mutate the input plan's metadata")
	}
}

func TestApply_NeverGrowsActionCount(t *testing.T) {
	p := planWith(
		action(types.PlatformStripe, types.ActionListPayments),
		action(types.PlatformWhop, types.ActionCheckAccess),
	)
	for _, c := range []*types.PolicyConstraints{
		nil,
		{},
		{MaxActions: 1},
		{MaxActions: 100},
		{AllowedPlatforms: []types.Platform{types.PlatformStripe}},
	} {
		gated := Apply(p, c)
		if len(gated.Actions) > len(p.Actions) {
			t.Errorf("Constraints %+v grew action count", c)
		}
	}
}
