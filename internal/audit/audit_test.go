package audit

import (
	"errors"
	"sync"
	"testing"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	entries []*model.AuditLog
	err     error
}

func (m *memStore) Create(e *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestLogger_Log(t *testing.T) {
	store := &memStore{}
	l := NewLogger(store)

	l.Log(Entry{
		UserID:     "u-1",
		Role:       permission.RoleAvaliador,
		Module:     permission.ModuleSuperiorEval,
		Action:     "update",
		EntityType: "evaluation",
		EntityID:   "e-1",
		Details:    map[string]interface{}{"naf": 4.43},
	})
	l.Wait()

	require.Len(t, store.entries, 1)
	got := store.entries[0]
	assert.Equal(t, "M09", got.Module)
	assert.Equal(t, "avaliador", got.Role)
	assert.JSONEq(t, `{"naf":4.43}`, got.Details)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestLogger_StoreFailureIsSwallowed(t *testing.T) {
	l := NewLogger(&memStore{err: errors.New("db down")})
	assert.NotPanics(t, func() {
		l.Log(Entry{UserID: "u-1", Module: permission.ModuleObjectives, Action: "create"})
		l.Wait()
	})
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Log(Entry{})
		l.Wait()
	})
}
