package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(CycleAberto, CycleEmAcompanhamento))
	assert.NoError(t, ValidateTransition(CycleEmAcompanhamento, CycleFechado))
	assert.NoError(t, ValidateTransition(CycleFechado, CycleHomologado))

	assert.ErrorIs(t, ValidateTransition(CycleHomologado, CycleAberto), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(CycleFechado, CycleEmAcompanhamento), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(CycleAberto, CycleFechado), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(CycleAberto, CycleAberto), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(CycleNone, CycleAberto), ErrUnknownCycleState)
	assert.ErrorIs(t, ValidateTransition(CycleAberto, CycleState("arquivado")), ErrUnknownCycleState)
}

func TestCycleState_Next(t *testing.T) {
	next, ok := CycleEmAcompanhamento.Next()
	assert.True(t, ok)
	assert.Equal(t, CycleFechado, next)

	_, ok = CycleHomologado.Next()
	assert.False(t, ok)
}

func TestLockRules_Pairs(t *testing.T) {
	assert.Equal(t, []string{
		"M07.create", "M07.update", "M07.delete",
		"M08.create", "M08.update", "M08.delete",
		"M09.create", "M09.update", "M09.delete",
		"M10.create", "M10.update", "M10.delete",
		"M11.create", "M11.update", "M11.delete",
		"M12.create", "M12.update",
	}, DefaultLockRules().Pairs())
}

func TestLockRules_Vetoes(t *testing.T) {
	l := DefaultLockRules()

	assert.True(t, l.Vetoes(CycleFechado, ModuleSuperiorEval, ActionUpdate))
	assert.False(t, l.Vetoes(CycleAberto, ModuleSuperiorEval, ActionUpdate))
	assert.False(t, l.Vetoes(CycleFechado, ModuleComplaints, ActionCreate))
	assert.False(t, (*LockRules)(nil).Vetoes(CycleFechado, ModuleObjectives, ActionUpdate))
}
