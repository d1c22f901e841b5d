package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScope_Allows(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.True(t, Unrestricted().Allows(a))
	assert.True(t, Only(a).Allows(a))
	assert.False(t, Only(a).Allows(b))
	assert.False(t, Only().Allows(a))
}

func TestCycleGuard_ZeroValueSkipsLock(t *testing.T) {
	// no cycle, no transaction needed
	assert.NoError(t, CycleGuard{}.hold(nil))
	assert.NoError(t, CycleGuard{CycleID: uuid.New()}.hold(nil))
}
