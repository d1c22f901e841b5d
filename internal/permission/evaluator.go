package permission

// Evaluator answers authorization questions over an immutable Table,
// Catalog and LockRules. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	catalog *Catalog
	table   *Table
	locks   *LockRules
}

func NewEvaluator(catalog *Catalog, table *Table, locks *LockRules) *Evaluator {
	return &Evaluator{catalog: catalog, table: table, locks: locks}
}

// NewDefaultEvaluator wires the built-in catalog, role matrix and lock list.
func NewDefaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultCatalog(), DefaultTable(), DefaultLockRules())
}

func (e *Evaluator) Catalog() *Catalog {
	return e.catalog
}

func (e *Evaluator) Table() *Table {
	return e.table
}

func (e *Evaluator) LockRules() *LockRules {
	return e.locks
}

// HasPermission reports whether role is granted action on module.
func (e *Evaluator) HasPermission(role Role, module ModuleCode, action Action) bool {
	return e.table.grant(role, module).has(action)
}

// HasModuleAccess reports whether role holds any action on module.
func (e *Evaluator) HasModuleAccess(role Role, module ModuleCode) bool {
	return e.table.grant(role, module) != 0
}

// IsModuleLocked reports whether the cycle state vetoes the pair for role.
// Admin keeps access for audit purposes.
func (e *Evaluator) IsModuleLocked(role Role, module ModuleCode, action Action, state CycleState) bool {
	if state == CycleNone || !StateLocks(state) {
		return false
	}
	if role == RoleAdmin {
		return false
	}
	return e.locks.Vetoes(state, module, action)
}

// CanPerformAction is the gate every mutating call site goes through.
func (e *Evaluator) CanPerformAction(role Role, module ModuleCode, action Action, state CycleState) bool {
	return e.HasPermission(role, module, action) && !e.IsModuleLocked(role, module, action, state)
}

func (e *Evaluator) HasScope(role Role, scope Scope) bool {
	return e.table.scoped(role, scope)
}

// AccessibleModules returns the modules role can reach, in catalog order.
func (e *Evaluator) AccessibleModules(role Role) []Module {
	var out []Module
	if e.catalog == nil {
		return out
	}
	for _, m := range e.catalog.modules {
		if e.HasModuleAccess(role, m.Code) {
			out = append(out, m)
		}
	}
	return out
}

// CanHomologate requires access to the homologation module and the absence
// of the cannot_homologate scope.
func (e *Evaluator) CanHomologate(role Role) bool {
	return !e.HasScope(role, ScopeCannotHomologate) && e.HasModuleAccess(role, ModuleHomologation)
}

func (e *Evaluator) ShouldHidePeerReviewerIdentity(role Role) bool {
	return e.table.privacy(role).HidePeerReviewerIdentity
}

func (e *Evaluator) ShouldHideUtenteIdentities(role Role) bool {
	return e.table.privacy(role).HideUtenteIdentities
}

func (e *Evaluator) IsAnonymousSubmissionRequired(role Role) bool {
	return e.table.privacy(role).AnonymousSubmissionRequired
}

func (e *Evaluator) IsAnonymousSubmissionOptional(role Role) bool {
	return e.table.privacy(role).AnonymousSubmissionOptional
}

// Check is the untyped entry point for codes arriving over HTTP or from
// storage. Any value that fails to parse denies.
func (e *Evaluator) Check(role, module, action string, state string) bool {
	r, ok := ParseRole(role)
	if !ok {
		return false
	}
	if e.catalog == nil {
		return false
	}
	m, ok := e.catalog.Parse(module)
	if !ok {
		return false
	}
	a, ok := ParseAction(action)
	if !ok {
		return false
	}
	st := CycleNone
	if state != "" {
		if st, ok = ParseCycleState(state); !ok {
			return false
		}
	}
	return e.CanPerformAction(r, m, a, st)
}
