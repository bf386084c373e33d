package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusGuards(t *testing.T) {
	tests := []struct {
		status           string
		terminal         bool
		acceptsEstimates bool
		canComplete      bool
	}{
		{OrderStatusPending, false, true, false},
		{OrderStatusQuoted, false, true, false},
		{OrderStatusAccepted, false, false, false},
		{OrderStatusInProgress, false, false, true},
		{OrderStatusReady, false, false, true},
		{OrderStatusCompleted, true, false, false},
		{OrderStatusCancelled, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			order := Order{Status: tt.status}
			assert.Equal(t, tt.terminal, order.IsTerminal())
			assert.Equal(t, tt.acceptsEstimates, order.AcceptsEstimates())
			assert.Equal(t, tt.canComplete, order.CanComplete())
		})
	}
}

func TestOrderParticipants(t *testing.T) {
	tailorID := uint(2)
	order := Order{CustomerID: 1, TailorID: &tailorID}

	assert.True(t, order.IsParticipant(1))
	assert.True(t, order.IsParticipant(2))
	assert.False(t, order.IsParticipant(3))

	assert.True(t, order.IsAssignedTailor(2))
	assert.False(t, order.IsAssignedTailor(1))

	unassigned := Order{CustomerID: 1}
	assert.False(t, unassigned.IsAssignedTailor(2))
	assert.True(t, unassigned.IsParticipant(1))
}

func TestIsValidCategory(t *testing.T) {
	for _, category := range []string{
		CategorySuit, CategoryDress, CategoryShirt, CategoryPants,
		CategorySkirt, CategoryCoat, CategoryTraditional, CategoryAlteration, CategoryOther,
	} {
		assert.True(t, IsValidCategory(category), category)
	}

	assert.False(t, IsValidCategory("shoes"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Suit"))
}

func TestProductionStageEnums(t *testing.T) {
	assert.Len(t, ProductionStages, 5)
	for _, stage := range ProductionStages {
		assert.True(t, IsValidStage(stage), stage)
	}
	assert.False(t, IsValidStage("ironing"))

	assert.True(t, IsValidStageStatus(StageStatusInProgress))
	assert.True(t, IsValidStageStatus(StageStatusCompleted))
	assert.False(t, IsValidStageStatus("done"))
}
