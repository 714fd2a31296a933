package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionplan/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult(planID string, success bool) *types.PlanResult {
	a := types.Action{
		Platform:   types.PlatformStripe,
		Type:       types.ActionListPayments,
		Parameters: map[string]interface{}{"limit": 5},
	}
	var r types.ActionResult
	if success {
		r = types.NewSuccess(a, map[string]interface{}{"count": 5})
	} else {
		r = types.NewFailure(a, "upstream unavailable")
	}
	return &types.PlanResult{
		PlanID:     planID,
		Success:    success,
		Results:    []types.ActionResult{r},
		ExecutedAt: time.Now().UTC(),
		Duration:   42 * time.Millisecond,
	}
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveResult("list payments", sampleResult("plan_1", true)))
	require.NoError(t, store.SaveResult("list payments again", sampleResult("plan_2", false)))

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "plan_2", runs[0].PlanID)
	assert.False(t, runs[0].Success)
	assert.Equal(t, "plan_1", runs[1].PlanID)
	assert.True(t, runs[1].Success)

	assert.Equal(t, "list payments", runs[1].Prompt)
	assert.Equal(t, 42*time.Millisecond, runs[1].Duration)
	assert.False(t, runs[1].ExecutedAt.IsZero())

	require.Len(t, runs[1].Results, 1)
	assert.Equal(t, types.ActionListPayments, runs[1].Results[0].Action.Type)
	assert.True(t, runs[1].Results[0].Success)

	require.Len(t, runs[0].Results, 1)
	assert.Equal(t, "upstream unavailable", runs[0].Results[0].Error)
}

func TestStore_RecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveResult("p", sampleResult("plan_n", true)))
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_SaveNilResult(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.SaveResult("p", nil))
}

func TestStore_EmptyStore(t *testing.T) {
	store := openTestStore(t)
	runs, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
