package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equiptrack/internal/types"
)

func docs(logistics, challan, installation, invoice bool) types.DocumentSet {
	var d types.DocumentSet
	if logistics {
		d.Logistics = &types.ConsignmentDocument{}
	}
	if challan {
		d.Challan = &types.ConsignmentDocument{}
	}
	if installation {
		d.Installation = &types.ConsignmentDocument{}
	}
	if invoice {
		d.Invoice = &types.ConsignmentDocument{}
	}
	return d
}

func TestEvaluate(t *testing.T) {

	testCases := []struct {
		name           string
		docs           types.DocumentSet
		isComplete     bool
		hasAnyProgress bool
	}{
		{"no documents", docs(false, false, false, false), false, false},
		{"logistics only", docs(true, false, false, false), false, true},
		{"invoice only", docs(false, false, false, true), false, true},
		{"three of four", docs(true, true, true, false), false, true},
		{"all four", docs(true, true, true, true), true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.docs)
			assert.Equal(t, tc.isComplete, d.IsComplete)
			assert.Equal(t, tc.hasAnyProgress, d.HasAnyProgress)
		})
	}
}

func TestEvaluateSlotsAreIndependent(t *testing.T) {
	d := Evaluate(docs(false, true, false, false))
	assert.False(t, d.HasLogistics)
	assert.True(t, d.HasChallan)
	assert.False(t, d.HasInstallation)
	assert.False(t, d.HasInvoice)
}

func TestStatusFor(t *testing.T) {

	testCases := []struct {
		name  string
		stats Stats
		want  types.TenderStatus
	}{
		{"no consignees", Stats{}, types.StatusDraft},
		{"all idle", Stats{Total: 3}, types.StatusDraft},
		{"one in progress", Stats{Total: 3, InProgress: 1}, types.StatusInProgress},
		{"all in progress", Stats{Total: 2, InProgress: 2}, types.StatusInProgress},
		{"one complete", Stats{Total: 3, Complete: 1}, types.StatusPartiallyCompleted},
		{"complete and in progress", Stats{Total: 3, Complete: 1, InProgress: 2}, types.StatusPartiallyCompleted},
		{"all complete", Stats{Total: 3, Complete: 3}, types.StatusCompleted},
		{"single complete", Stats{Total: 1, Complete: 1}, types.StatusCompleted},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.stats))
		})
	}
}

func TestStatusOfNoConsignees(t *testing.T) {
	assert.Equal(t, types.StatusDraft, StatusOf(nil))
	assert.Equal(t, types.StatusDraft, StatusOf([]types.ConsigneeDetail{}))
}

func TestStatusOfMixedConsignees(t *testing.T) {
	// One site fully documented, one with only logistics: partially
	// completed, not completed and not merely in progress.
	consignees := []types.ConsigneeDetail{
		{Documents: docs(true, true, true, true)},
		{Documents: docs(true, false, false, false)},
	}
	assert.Equal(t, types.StatusPartiallyCompleted, StatusOf(consignees))
}

func TestStatusOfSingleConsigneeTransitions(t *testing.T) {
	// Draft -> In Progress -> Completed as documents accumulate on one site.
	assert.Equal(t, types.StatusDraft,
		StatusOf([]types.ConsigneeDetail{{Documents: docs(false, false, false, false)}}))
	assert.Equal(t, types.StatusInProgress,
		StatusOf([]types.ConsigneeDetail{{Documents: docs(true, false, false, false)}}))
	assert.Equal(t, types.StatusCompleted,
		StatusOf([]types.ConsigneeDetail{{Documents: docs(true, true, true, true)}}))
}

func TestStatusMonotonicUnderAttachment(t *testing.T) {

	rank := map[types.TenderStatus]int{
		types.StatusDraft:              0,
		types.StatusInProgress:         1,
		types.StatusPartiallyCompleted: 2,
		types.StatusCompleted:          3,
	}

	// Attach documents one at a time across two consignees and check the
	// status never moves backward.
	steps := [][]types.ConsigneeDetail{
		{{Documents: docs(false, false, false, false)}, {Documents: docs(false, false, false, false)}},
		{{Documents: docs(true, false, false, false)}, {Documents: docs(false, false, false, false)}},
		{{Documents: docs(true, true, false, false)}, {Documents: docs(false, false, false, false)}},
		{{Documents: docs(true, true, true, true)}, {Documents: docs(false, false, false, false)}},
		{{Documents: docs(true, true, true, true)}, {Documents: docs(true, false, false, false)}},
		{{Documents: docs(true, true, true, true)}, {Documents: docs(true, true, true, true)}},
	}

	prev := types.StatusDraft
	for i, consignees := range steps {
		current := StatusOf(consignees)
		assert.GreaterOrEqual(t, rank[current], rank[prev], "step %d regressed from %s to %s", i, prev, current)
		prev = current
	}
	assert.Equal(t, types.StatusCompleted, prev)
}
