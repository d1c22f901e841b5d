package service

import (
	"sort"
	"sync"

	"sgad-api/internal/audit"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func assignID(b *model.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		assignID(&u.BaseModel)
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindAll(f repository.UserFilter) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if f.Role != "" && u.RoleCode != f.Role {
			continue
		}
		if f.OrgUnit != "" && u.OrgUnit != f.OrgUnit {
			continue
		}
		if f.SuperiorID != nil && (u.SuperiorID == nil || *u.SuperiorID != *f.SuperiorID) {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) Create(u *model.User) error {
	assignID(&u.BaseModel)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id uuid.UUID, _ string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdatePassword(id uuid.UUID, hashed string) error {
	r.users[id].Password = hashed
	return nil
}

func (r *fakeUserRepo) UpdateTokenVersion(id uuid.UUID, v string) error {
	r.users[id].TokenVersion = v
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type fakeCycleRepo struct {
	cycles      map[uuid.UUID]*model.Cycle
	transitions []model.CycleTransition
}

func newFakeCycleRepo(cycles ...*model.Cycle) *fakeCycleRepo {
	r := &fakeCycleRepo{cycles: map[uuid.UUID]*model.Cycle{}}
	for _, c := range cycles {
		assignID(&c.BaseModel)
		r.cycles[c.ID] = c
	}
	return r
}

func (r *fakeCycleRepo) Create(c *model.Cycle) error {
	assignID(&c.BaseModel)
	cp := *c
	r.cycles[c.ID] = &cp
	return nil
}

func (r *fakeCycleRepo) Update(c *model.Cycle) error {
	cp := *c
	r.cycles[c.ID] = &cp
	return nil
}

func (r *fakeCycleRepo) Delete(id uuid.UUID, _ string) error {
	delete(r.cycles, id)
	return nil
}

func (r *fakeCycleRepo) FindByID(id uuid.UUID) (*model.Cycle, error) {
	c, ok := r.cycles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCycleRepo) FindAll() ([]model.Cycle, error) {
	var out []model.Cycle
	for _, c := range r.cycles {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCycleRepo) Transition(id uuid.UUID, from, to permission.CycleState, _ string, note string) (*model.Cycle, error) {
	c, ok := r.cycles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if c.State != from {
		return nil, repository.ErrStateChanged
	}
	c.State = to
	r.transitions = append(r.transitions, model.CycleTransition{CycleID: id, From: from, To: to, Note: note})
	cp := *c
	return &cp, nil
}

func (r *fakeCycleRepo) Transitions(id uuid.UUID) ([]model.CycleTransition, error) {
	var out []model.CycleTransition
	for _, t := range r.transitions {
		if t.CycleID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCycleRepo) CountByState() (map[permission.CycleState]int64, error) {
	out := map[permission.CycleState]int64{}
	for _, c := range r.cycles {
		out[c.State]++
	}
	return out, nil
}

// cycleLatch stands in for the shared lock a repository takes on the cycle
// row before writing. beforeWrite runs first so tests can move the cycle
// between the service check and the write.
type cycleLatch struct {
	cycles      *fakeCycleRepo
	beforeWrite func()
}

func (l *cycleLatch) hold(g repository.CycleGuard) error {
	if l.beforeWrite != nil {
		l.beforeWrite()
	}
	if l.cycles == nil || g.Check == nil {
		return nil
	}
	c, ok := l.cycles.cycles[g.CycleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	return g.Check(c.State)
}

type fakeObjectiveRepo struct {
	cycleLatch
	objs map[uuid.UUID]*model.Objective
}

func newFakeObjectiveRepo() *fakeObjectiveRepo {
	return &fakeObjectiveRepo{objs: map[uuid.UUID]*model.Objective{}}
}

func (r *fakeObjectiveRepo) Create(o *model.Objective, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	assignID(&o.BaseModel)
	cp := *o
	r.objs[o.ID] = &cp
	return nil
}

func (r *fakeObjectiveRepo) Update(o *model.Objective, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	cp := *o
	r.objs[o.ID] = &cp
	return nil
}

func (r *fakeObjectiveRepo) Delete(id uuid.UUID, _ string, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	delete(r.objs, id)
	return nil
}

func (r *fakeObjectiveRepo) FindByID(id uuid.UUID) (*model.Objective, error) {
	o, ok := r.objs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeObjectiveRepo) FindByCycle(cycleID uuid.UUID, scope repository.Scope) ([]model.Objective, error) {
	var out []model.Objective
	for _, o := range r.objs {
		if o.CycleID == cycleID && scope.Allows(o.EvaluatedID) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeEvaluationRepo struct {
	cycleLatch
	evs map[uuid.UUID]*model.Evaluation
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{evs: map[uuid.UUID]*model.Evaluation{}}
}

func (r *fakeEvaluationRepo) Create(e *model.Evaluation, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	assignID(&e.BaseModel)
	cp := *e
	r.evs[e.ID] = &cp
	return nil
}

func (r *fakeEvaluationRepo) Update(e *model.Evaluation, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	cp := *e
	r.evs[e.ID] = &cp
	return nil
}

func (r *fakeEvaluationRepo) Delete(id uuid.UUID, _ string, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	delete(r.evs, id)
	return nil
}

func (r *fakeEvaluationRepo) FindByID(id uuid.UUID) (*model.Evaluation, error) {
	e, ok := r.evs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEvaluationRepo) Find(f repository.EvaluationFilter) ([]model.Evaluation, error) {
	var out []model.Evaluation
	for _, e := range r.evs {
		if f.CycleID != nil && e.CycleID != *f.CycleID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.EvaluatorID != nil && (e.EvaluatorID == nil || *e.EvaluatorID != *f.EvaluatorID) {
			continue
		}
		if !f.Evaluated.Allows(e.EvaluatedID) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEvaluationRepo) GradeDistribution(cycleID uuid.UUID) (map[scoring.Grade]int64, error) {
	out := map[scoring.Grade]int64{}
	for _, e := range r.evs {
		if e.CycleID == cycleID && e.Type == model.EvaluationSuperior && e.Grade != "" {
			out[e.Grade]++
		}
	}
	return out, nil
}

type fakeAckRepo struct {
	cycleLatch
	acks []model.Acknowledgement
}

func (r *fakeAckRepo) Create(a *model.Acknowledgement, g repository.CycleGuard) error {
	if err := r.hold(g); err != nil {
		return err
	}
	assignID(&a.BaseModel)
	r.acks = append(r.acks, *a)
	return nil
}

func (r *fakeAckRepo) FindByEvaluation(id uuid.UUID) ([]model.Acknowledgement, error) {
	var out []model.Acknowledgement
	for _, a := range r.acks {
		if a.EvaluationID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeComplaintRepo struct {
	items map[uuid.UUID]*model.Complaint
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{items: map[uuid.UUID]*model.Complaint{}}
}

func (r *fakeComplaintRepo) Create(c *model.Complaint) error {
	assignID(&c.BaseModel)
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeComplaintRepo) Update(c *model.Complaint) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeComplaintRepo) FindByID(id uuid.UUID) (*model.Complaint, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeComplaintRepo) Find(f repository.ComplaintFilter) ([]model.Complaint, error) {
	var out []model.Complaint
	for _, c := range r.items {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !f.Complainants.Allows(c.ComplainantID) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type memAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (s *memAuditStore) Create(e *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memAuditStore) all() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.entries...)
}

func newAudit() (*audit.Logger, *memAuditStore) {
	store := &memAuditStore{}
	return audit.NewLogger(store), store
}

type recordedEvent struct {
	Type string
	Data interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(eventType, _ string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Data: data})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func actorOf(u *model.User) Actor {
	return Actor{UserID: u.ID, Role: u.RoleCode, Name: u.FullName, Email: u.Email, OrgUnit: u.OrgUnit}
}
