package permission

// Action is a CRUD verb checked against a module.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllActions in canonical order.
var AllActions = []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete}

func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionView, ActionCreate, ActionUpdate, ActionDelete:
		return Action(s), true
	}
	return "", false
}

func (a Action) String() string {
	return string(a)
}

func (a Action) bit() actionSet {
	switch a {
	case ActionView:
		return 1 << 0
	case ActionCreate:
		return 1 << 1
	case ActionUpdate:
		return 1 << 2
	case ActionDelete:
		return 1 << 3
	}
	return 0
}

// actionSet is a bitset of granted actions. The zero value grants nothing,
// so any lookup miss resolves to denial.
type actionSet uint8

func newActionSet(actions ...Action) actionSet {
	var s actionSet
	for _, a := range actions {
		s |= a.bit()
	}
	return s
}

func (s actionSet) has(a Action) bool {
	b := a.bit()
	return b != 0 && s&b == b
}

func (s actionSet) actions() []Action {
	out := make([]Action, 0, len(AllActions))
	for _, a := range AllActions {
		if s.has(a) {
			out = append(out, a)
		}
	}
	return out
}
