package permission

import "sort"

// LockRules is the set of module/action pairs vetoed once a cycle is closed
// or ratified. It has no notion of roles; the admin exemption is applied by
// the Evaluator.
type LockRules struct {
	pairs map[ModuleCode]actionSet
}

// NewLockRules copies the given pairs.
func NewLockRules(pairs map[ModuleCode][]Action) *LockRules {
	l := &LockRules{pairs: make(map[ModuleCode]actionSet, len(pairs))}
	for code, actions := range pairs {
		if set := newActionSet(actions...); set != 0 {
			l.pairs[code] = set
		}
	}
	return l
}

// DefaultLockRules locks objectives, acknowledgements and the four
// evaluation modules.
func DefaultLockRules() *LockRules {
	return NewLockRules(map[ModuleCode][]Action{
		ModuleObjectives:      {ActionCreate, ActionUpdate, ActionDelete},
		ModuleSelfEvaluation:  {ActionCreate, ActionUpdate, ActionDelete},
		ModuleSuperiorEval:    {ActionCreate, ActionUpdate, ActionDelete},
		ModulePeerEvaluation:  {ActionCreate, ActionUpdate, ActionDelete},
		ModuleUtenteEval:      {ActionCreate, ActionUpdate, ActionDelete},
		ModuleAcknowledgement: {ActionCreate, ActionUpdate},
	})
}

// StateLocks reports whether the state is one in which the lock list applies.
func StateLocks(state CycleState) bool {
	return state == CycleFechado || state == CycleHomologado
}

// Vetoes reports whether the pair is globally denied in the given state.
func (l *LockRules) Vetoes(state CycleState, code ModuleCode, a Action) bool {
	if l == nil || !StateLocks(state) {
		return false
	}
	return l.pairs[code].has(a)
}

// Pairs lists the locked pairs as "Mxx.action" codes.
func (l *LockRules) Pairs() []string {
	if l == nil {
		return nil
	}
	codes := make([]string, 0, len(l.pairs))
	for code := range l.pairs {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	var out []string
	for _, code := range codes {
		for _, a := range l.pairs[ModuleCode(code)].actions() {
			out = append(out, PairCode(ModuleCode(code), a))
		}
	}
	return out
}
