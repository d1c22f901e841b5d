package service

import (
	"errors"
	"fmt"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrCycleLocked = errors.New("evaluation cycle is closed for this operation")
	ErrNotFound    = errors.New("record not found")
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflicting state")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  uuid.UUID
	Role    permission.Role
	Name    string
	Email   string
	OrgUnit string
}

// ID is the string form stored in created_by/updated_by columns.
func (a Actor) ID() string {
	return a.UserID.String()
}

// EventPublisher pushes live notifications to connected clients.
type EventPublisher interface {
	Publish(eventType, message string, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// guard wraps the evaluator with the error contract used by every service.
type guard struct {
	ev *permission.Evaluator
}

// allow checks a grant that does not depend on a cycle.
func (g guard) allow(role permission.Role, module permission.ModuleCode, action permission.Action) error {
	if !g.ev.HasPermission(role, module, action) {
		return ErrForbidden
	}
	return nil
}

// allowInCycle checks a grant against the state of the record's cycle.
func (g guard) allowInCycle(role permission.Role, module permission.ModuleCode, action permission.Action, state permission.CycleState) error {
	if !g.ev.HasPermission(role, module, action) {
		return ErrForbidden
	}
	if g.ev.IsModuleLocked(role, module, action, state) {
		return ErrCycleLocked
	}
	return nil
}

// lockedIn repeats allowInCycle at write time against the cycle state the
// repository reads under a shared row lock.
func (g guard) lockedIn(role permission.Role, module permission.ModuleCode, action permission.Action, cycleID uuid.UUID) repository.CycleGuard {
	return repository.CycleGuard{
		CycleID: cycleID,
		Check: func(state permission.CycleState) error {
			return g.allowInCycle(role, module, action, state)
		},
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// scopeResolver turns a role's scope tags into the set of evaluated users
// it may see.
type scopeResolver struct {
	ev    *permission.Evaluator
	users repository.UserRepository
}

func (r scopeResolver) resolve(actor Actor) (repository.Scope, error) {
	switch {
	case r.ev.HasScope(actor.Role, permission.ScopeSelfOnly):
		return repository.Only(actor.UserID), nil
	case r.ev.HasScope(actor.Role, permission.ScopeTeamOnly):
		team, err := r.users.FindAll(repository.UserFilter{SuperiorID: &actor.UserID})
		if err != nil {
			return repository.Scope{}, err
		}
		return repository.Only(userIDs(team, actor.UserID)...), nil
	case r.ev.HasScope(actor.Role, permission.ScopeUnitOnly):
		if actor.OrgUnit == "" {
			return repository.Only(actor.UserID), nil
		}
		unit, err := r.users.FindAll(repository.UserFilter{OrgUnit: actor.OrgUnit})
		if err != nil {
			return repository.Scope{}, err
		}
		return repository.Only(userIDs(unit, actor.UserID)...), nil
	case r.ev.HasScope(actor.Role, permission.ScopeSubmissionOnly):
		// utentes never browse evaluated workers
		return repository.Only(), nil
	}
	return repository.Unrestricted(), nil
}

func userIDs(users []model.User, extra ...uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users)+len(extra))
	ids = append(ids, extra...)
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
