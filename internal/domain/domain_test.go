package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	tests := []struct {
		input   string
		want    Capability
		wantErr bool
	}{
		{"view:sales", Cap(ActionView, ModuleSales), false},
		{" Update:Resources ", Cap(ActionUpdate, ModuleResources), false},
		{"*:quality", Cap(Wildcard, ModuleQuality), false},
		{"view:*", Cap(ActionView, Wildcard), false},
		{"sales", Capability{}, true},
		{":sales", Capability{}, true},
		{"view:", Capability{}, true},
		{"approve:sales", Capability{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCapability(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustCapabilityPanics(t *testing.T) {
	assert.Panics(t, func() { MustCapability("nonsense") })
	assert.Equal(t, "view:sales", MustCapability("view:sales").String())
}

func TestCapabilityCovers(t *testing.T) {
	viewSales := Cap(ActionView, ModuleSales)

	assert.True(t, viewSales.Covers(viewSales))
	assert.True(t, Cap(Wildcard, ModuleSales).Covers(viewSales))
	assert.True(t, Cap(ActionView, Wildcard).Covers(viewSales))
	assert.True(t, Cap(Wildcard, Wildcard).Covers(viewSales))
	assert.False(t, Cap(ActionUpdate, ModuleSales).Covers(viewSales))
	assert.False(t, Cap(ActionView, ModulePurchasing).Covers(viewSales))
}

func TestCapabilitySet(t *testing.T) {
	set, err := ParseCapabilitySet([]string{"view:sales", "*:quality"})
	require.NoError(t, err)

	assert.True(t, set.Has(Cap(ActionView, ModuleSales)))
	assert.True(t, set.Has(Cap(ActionDelete, ModuleQuality)))
	assert.False(t, set.Has(Cap(ActionView, ModulePurchasing)))

	missing, ok := set.Missing(Cap(ActionView, ModuleSales), Cap(ActionView, ModulePurchasing))
	assert.True(t, ok)
	assert.Equal(t, Cap(ActionView, ModulePurchasing), missing)

	_, ok = set.Missing(Cap(ActionView, ModuleSales))
	assert.False(t, ok)

	assert.Equal(t, []string{"*:quality", "view:sales"}, set.Strings())

	_, err = ParseCapabilitySet([]string{"view:sales", "bad"})
	assert.Error(t, err)
}

func TestEmptySetDeniesEverything(t *testing.T) {
	var c Caller
	assert.False(t, c.Can(Cap(ActionView, ModuleSales)))
}

func TestTrainingAssignmentOverdue(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, TrainingAssignment{DueAt: &past}.Overdue(now))
	assert.False(t, TrainingAssignment{DueAt: &future}.Overdue(now))
	assert.False(t, TrainingAssignment{}.Overdue(now))
	assert.False(t, TrainingAssignment{DueAt: &past, CompletedAt: &now}.Overdue(now))
}

func TestRiskScore(t *testing.T) {
	assert.Equal(t, 12, Risk{Severity: 4, Likelihood: 3}.Score())
}
