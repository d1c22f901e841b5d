package permission

import (
	"errors"
	"fmt"
)

// CycleState is the lifecycle state of an evaluation cycle. The empty value
// means "no cycle context" and never locks anything.
type CycleState string

const (
	CycleNone             CycleState = ""
	CycleAberto           CycleState = "aberto"
	CycleEmAcompanhamento CycleState = "em_acompanhamento"
	CycleFechado          CycleState = "fechado"
	CycleHomologado       CycleState = "homologado"
)

// CycleStates in lifecycle order.
var CycleStates = []CycleState{CycleAberto, CycleEmAcompanhamento, CycleFechado, CycleHomologado}

var (
	ErrInvalidTransition = errors.New("invalid cycle state transition")
	ErrUnknownCycleState = errors.New("unknown cycle state")
)

func ParseCycleState(s string) (CycleState, bool) {
	for _, st := range CycleStates {
		if string(st) == s {
			return st, true
		}
	}
	return CycleNone, false
}

// Rank is the position of the state in the lifecycle, -1 when unknown.
func (s CycleState) Rank() int {
	for i, st := range CycleStates {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the state that follows s, if any.
func (s CycleState) Next() (CycleState, bool) {
	r := s.Rank()
	if r < 0 || r+1 >= len(CycleStates) {
		return CycleNone, false
	}
	return CycleStates[r+1], true
}

func (s CycleState) String() string {
	return string(s)
}

// ValidateTransition accepts only a single forward step. Lock rules rely on
// a closed cycle never reopening.
func ValidateTransition(from, to CycleState) error {
	if from.Rank() < 0 || to.Rank() < 0 {
		return ErrUnknownCycleState
	}
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
