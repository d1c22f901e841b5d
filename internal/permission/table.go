package permission

import "sort"

// Scope is an opaque tag restricting data visibility or mutation rights
// beyond the module/action grant.
type Scope string

const (
	ScopeSelfOnly         Scope = "self_only"
	ScopeTeamOnly         Scope = "team_only"
	ScopeUnitOnly         Scope = "unit_only"
	ScopeSubmissionOnly   Scope = "submission_only"
	ScopeCannotHomologate Scope = "cannot_homologate"
)

// Privacy flags govern identity disclosure in peer and utente evaluations.
type Privacy struct {
	HidePeerReviewerIdentity    bool `json:"hide_peer_reviewer_identity"`
	HideUtenteIdentities        bool `json:"hide_utente_identities"`
	AnonymousSubmissionRequired bool `json:"anonymous_submission_required"`
	AnonymousSubmissionOptional bool `json:"anonymous_submission_optional"`
}

// RoleGrant is the construction-time description of what a role may do.
type RoleGrant struct {
	Modules map[ModuleCode][]Action
	Scopes  []Scope
	Privacy Privacy
}

type roleEntry struct {
	modules map[ModuleCode]actionSet
	scopes  map[Scope]struct{}
	privacy Privacy
}

// Table is the immutable role -> permissions mapping. Build it once with
// NewTable and share it; nothing exposed by Table aliases its internals.
type Table struct {
	roles map[Role]roleEntry
}

// NewTable copies the grants into an immutable table. Entries for roles
// outside the fixed set are dropped.
func NewTable(grants map[Role]RoleGrant) *Table {
	t := &Table{roles: make(map[Role]roleEntry, len(grants))}
	for role, g := range grants {
		if !role.Valid() {
			continue
		}
		e := roleEntry{
			modules: make(map[ModuleCode]actionSet, len(g.Modules)),
			scopes:  make(map[Scope]struct{}, len(g.Scopes)),
			privacy: g.Privacy,
		}
		for code, actions := range g.Modules {
			if set := newActionSet(actions...); set != 0 {
				e.modules[code] = set
			}
		}
		for _, s := range g.Scopes {
			e.scopes[s] = struct{}{}
		}
		t.roles[role] = e
	}
	return t
}

// grant is the single lookup path; a miss at any level yields the empty set.
func (t *Table) grant(role Role, code ModuleCode) actionSet {
	if t == nil {
		return 0
	}
	e, ok := t.roles[role]
	if !ok {
		return 0
	}
	return e.modules[code]
}

func (t *Table) scoped(role Role, scope Scope) bool {
	if t == nil {
		return false
	}
	e, ok := t.roles[role]
	if !ok {
		return false
	}
	_, ok = e.scopes[scope]
	return ok
}

func (t *Table) privacy(role Role) Privacy {
	if t == nil {
		return Privacy{}
	}
	return t.roles[role].privacy
}

// Actions returns the actions granted to role on code, in canonical order.
func (t *Table) Actions(role Role, code ModuleCode) []Action {
	return t.grant(role, code).actions()
}

// Scopes returns the role's scopes sorted by name.
func (t *Table) Scopes(role Role) []Scope {
	if t == nil {
		return nil
	}
	e := t.roles[role]
	out := make([]Scope, 0, len(e.scopes))
	for s := range e.scopes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissionCodes flattens a role's grants to "Mxx.action" codes, sorted.
// These feed the dynamic roles/permissions tables.
func (t *Table) PermissionCodes(role Role) []string {
	if t == nil {
		return nil
	}
	e := t.roles[role]
	var out []string
	for code, set := range e.modules {
		for _, a := range set.actions() {
			out = append(out, PairCode(code, a))
		}
	}
	sort.Strings(out)
	return out
}

// PairCode renders a module/action pair as "M07.update".
func PairCode(code ModuleCode, a Action) string {
	return string(code) + "." + string(a)
}

var crud = []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete}

// DefaultTable is the role matrix of the deployed legal framework.
func DefaultTable() *Table {
	admin := make(map[ModuleCode][]Action)
	for _, m := range DefaultCatalog().All() {
		admin[m.Code] = crud
	}

	return NewTable(map[Role]RoleGrant{
		RoleAdmin: {
			Modules: admin,
		},
		RoleDirigente: {
			Modules: map[ModuleCode][]Action{
				ModuleDashboard:       {ActionView},
				ModuleUsers:           {ActionView},
				ModuleCycles:          {ActionView, ActionUpdate},
				ModuleCompetencies:    {ActionView},
				ModuleOrgUnits:        {ActionView},
				ModuleObjectives:      crud,
				ModuleSelfEvaluation:  {ActionView},
				ModuleSuperiorEval:    {ActionView, ActionCreate, ActionUpdate},
				ModulePeerEvaluation:  {ActionView},
				ModuleUtenteEval:      {ActionView},
				ModuleAcknowledgement: {ActionView},
				ModuleComplaints:      {ActionView, ActionUpdate},
				ModuleHomologation:    {ActionView, ActionCreate, ActionUpdate},
				ModuleReports:         {ActionView},
			},
			Scopes: []Scope{ScopeUnitOnly},
			Privacy: Privacy{
				HidePeerReviewerIdentity: true,
				HideUtenteIdentities:     true,
			},
		},
		RoleAvaliador: {
			Modules: map[ModuleCode][]Action{
				ModuleDashboard:       {ActionView},
				ModuleCompetencies:    {ActionView},
				ModuleObjectives:      {ActionView, ActionCreate, ActionUpdate},
				ModuleSelfEvaluation:  {ActionView},
				ModuleSuperiorEval:    {ActionView, ActionCreate, ActionUpdate},
				ModulePeerEvaluation:  {ActionView},
				ModuleUtenteEval:      {ActionView},
				ModuleAcknowledgement: {ActionView},
				ModuleComplaints:      {ActionView, ActionUpdate},
				ModuleReports:         {ActionView},
			},
			Scopes: []Scope{ScopeTeamOnly, ScopeCannotHomologate},
			Privacy: Privacy{
				HidePeerReviewerIdentity: true,
				HideUtenteIdentities:     true,
			},
		},
		RoleAvaliado: {
			Modules: map[ModuleCode][]Action{
				ModuleDashboard:       {ActionView},
				ModuleCompetencies:    {ActionView},
				ModuleObjectives:      {ActionView},
				ModuleSelfEvaluation:  {ActionView, ActionCreate, ActionUpdate},
				ModuleSuperiorEval:    {ActionView},
				ModulePeerEvaluation:  {ActionView, ActionCreate, ActionUpdate},
				ModuleAcknowledgement: {ActionView, ActionCreate},
				ModuleComplaints:      {ActionView, ActionCreate},
				ModuleReports:         {ActionView},
			},
			Scopes: []Scope{ScopeSelfOnly, ScopeCannotHomologate},
			Privacy: Privacy{
				HidePeerReviewerIdentity: true,
				HideUtenteIdentities:     true,
			},
		},
		RoleUtenteInterno: {
			Modules: map[ModuleCode][]Action{
				ModuleUtenteEval: {ActionView, ActionCreate},
			},
			Scopes: []Scope{ScopeSubmissionOnly, ScopeCannotHomologate},
			Privacy: Privacy{
				HideUtenteIdentities:        true,
				AnonymousSubmissionOptional: true,
			},
		},
		RoleUtenteExterno: {
			Modules: map[ModuleCode][]Action{
				ModuleUtenteEval: {ActionCreate},
			},
			Scopes: []Scope{ScopeSubmissionOnly, ScopeCannotHomologate},
			Privacy: Privacy{
				HideUtenteIdentities:        true,
				AnonymousSubmissionRequired: true,
			},
		},
	})
}
