package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionplan/internal/compiler"
	"actionplan/internal/types"
)

func TestPlanFromPrompt_HappyPath(t *testing.T) {
	p := New(nil)

	resp := p.PlanFromPrompt(Request{Prompt: "create customer test@example.com"})

	require.True(t, resp.Success, "planning should succeed: %s", resp.Error)
	require.NotNil(t, resp.Plan)
	require.Len(t, resp.Plan.Actions, 1)
	assert.Equal(t, types.ActionCreateCustomer, resp.Plan.Actions[0].Type)
	assert.Empty(t, resp.ValidationErrors)
	assert.Equal(t, true, resp.Plan.Metadata["gatesApplied"], "gate must stamp the plan")
}

func TestPlanFromPrompt_FallbackPrompt(t *testing.T) {
	p := New(nil)

	resp := p.PlanFromPrompt(Request{Prompt: "asdfghjkl"})

	require.True(t, resp.Success)
	require.Len(t, resp.Plan.Actions, 1)
	assert.Equal(t, types.ActionListPayments, resp.Plan.Actions[0].Type)
}

func TestPlanFromPrompt_ConstraintsApplied(t *testing.T) {
	p := New(nil)

	resp := p.PlanFromPrompt(Request{
		Prompt: `create customer a@b.com and send notification title:"Hi" content:"Yo"`,
		Constraints: &types.PolicyConstraints{
			MaxActions: 1,
		},
	})

	require.True(t, resp.Success)
	require.Len(t, resp.Plan.Actions, 1)
	assert.Equal(t, types.ActionCreateCustomer, resp.Plan.Actions[0].Type,
		"truncation keeps the first action")
}

func TestPlanFromPrompt_ContextPlatform(t *testing.T) {
	p := New(nil)

	resp := p.PlanFromPrompt(Request{
		Prompt:  "list payments",
		Context: &types.PlanContext{Platform: types.PlatformWhop},
	})

	require.True(t, resp.Success)
	assert.Equal(t, types.PlatformWhop, resp.Plan.Actions[0].Platform)
}

// rogueStrategy emits an action outside the whitelist, as a compiler plugged
// in from elsewhere might.
type rogueStrategy struct{}

func (rogueStrategy) Compile(prompt string, platform types.Platform) []types.Action {
	return []types.Action{{
		Platform:   platform,
		Type:       "wire_money",
		Parameters: map[string]interface{}{"amount": "all of it"},
	}}
}

func TestPlanFromPrompt_RejectsNonWhitelistedActions(t *testing.T) {
	p := New(compiler.New(types.PlatformStripe, rogueStrategy{}))

	resp := p.PlanFromPrompt(Request{Prompt: "anything"})

	require.False(t, resp.Success)
	assert.Nil(t, resp.Plan, "no plan may be returned on validation failure")
	require.NotEmpty(t, resp.ValidationErrors)
	assert.Contains(t, resp.ValidationErrors[0], "actions[0].type")
}

// panicStrategy simulates an unexpected compiler defect.
type panicStrategy struct{}

func (panicStrategy) Compile(prompt string, platform types.Platform) []types.Action {
	panic("regex exploded")
}

func TestPlanFromPrompt_RecoversFromCompilerPanic(t *testing.T) {
	p := New(compiler.New(types.PlatformStripe, panicStrategy{}))

	resp := p.PlanFromPrompt(Request{Prompt: "anything"})

	require.False(t, resp.Success)
	assert.Nil(t, resp.Plan)
	assert.Contains(t, resp.Error, "planning failed")
	assert.Contains(t, resp.Error, "regex exploded")
}

func TestPlanFromPrompt_AggregatesAllViolations(t *testing.T) {
	p := New(compiler.New(types.PlatformStripe, multiRogueStrategy{}))

	resp := p.PlanFromPrompt(Request{Prompt: "anything"})

	require.False(t, resp.Success)
	assert.Len(t, resp.ValidationErrors, 2, "every violation must be surfaced")
}

type multiRogueStrategy struct{}

func (multiRogueStrategy) Compile(prompt string, platform types.Platform) []types.Action {
	return []types.Action{
		{Platform: platform, Type: "wire_money", Parameters: map[string]interface{}{}},
		{Platform: platform, Type: types.ActionCreateCustomer, Parameters: map[string]interface{}{"email": "bad"}},
	}
}
