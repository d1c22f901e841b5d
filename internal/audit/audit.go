// Package audit records permission-gated mutations after they succeed.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"sgad-api/internal/logging"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
)

// Store persists audit entries.
type Store interface {
	Create(entry *model.AuditLog) error
}

// Entry describes one audited mutation.
type Entry struct {
	UserID     string
	Role       permission.Role
	Module     permission.ModuleCode
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// Logger writes audit entries in the background. Failures are logged and
// never reach the request that triggered them.
type Logger struct {
	store Store
	wg    sync.WaitGroup
	now   func() time.Time
}

func NewLogger(store Store) *Logger {
	return &Logger{store: store, now: time.Now}
}

// Log is fire-and-forget.
func (l *Logger) Log(e Entry) {
	if l == nil || l.store == nil {
		return
	}
	row := l.toRow(e)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.store.Create(row); err != nil {
			logging.Error("audit write failed",
				"user_id", row.UserID, "module", row.Module, "action", row.Action,
				"entity_id", row.EntityID, "error", err)
		}
	}()
}

// Wait blocks until queued writes finish; used at shutdown and in tests.
func (l *Logger) Wait() {
	if l != nil {
		l.wg.Wait()
	}
}

func (l *Logger) toRow(e Entry) *model.AuditLog {
	var details string
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		}
	}
	return &model.AuditLog{
		UserID:     e.UserID,
		Role:       string(e.Role),
		Module:     string(e.Module),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
		CreatedAt:  l.now(),
	}
}
