package service

import (
	"testing"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *world) objectiveService() ObjectiveService {
	return NewObjectiveService(w.objectives, w.cycles, w.evaluations, w.users, w.evaluator, w.scoring, w.audit)
}

func (w *world) objectiveFor(u *model.User) *ObjectiveRequest {
	return &ObjectiveRequest{
		CycleID:     w.cycle.ID,
		EvaluatedID: u.ID,
		Kind:        model.ObjectiveIndividual,
		Title:       "Reduzir o tempo médio de resposta",
		Indicator:   "dias úteis",
		Target:      "5",
		Weight:      50,
	}
}

func TestObjective_CreateWithinTeam(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	obj, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	require.NoError(t, err)
	assert.Equal(t, w.avaliado.ID, obj.EvaluatedID)
	assert.Equal(t, w.avaliador.ID.String(), obj.CreatedBy)

	_, err = svc.Create(actorOf(w.avaliador), w.objectiveFor(w.outsider))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(actorOf(w.avaliado), w.objectiveFor(w.avaliado))
	assert.ErrorIs(t, err, ErrForbidden, "avaliado only views objectives")

	req := w.objectiveFor(w.avaliado)
	req.Title = ""
	_, err = svc.Create(actorOf(w.avaliador), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestObjective_LockedCycle(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	obj, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	require.NoError(t, err)

	w.setState(permission.CycleFechado)
	_, err = svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	assert.ErrorIs(t, err, ErrCycleLocked)
	_, err = svc.Update(actorOf(w.dirigente), obj.ID, w.objectiveFor(w.avaliado))
	assert.ErrorIs(t, err, ErrCycleLocked)
	assert.ErrorIs(t, svc.Delete(actorOf(w.dirigente), obj.ID), ErrCycleLocked)

	// viewing stays possible and admin is not locked out
	list, err := svc.List(actorOf(w.avaliado), w.cycle.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, svc.Delete(actorOf(w.admin), obj.ID))
}

func TestObjective_ListScope(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	_, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	require.NoError(t, err)
	_, err = svc.Create(actorOf(w.admin), w.objectiveFor(w.outsider))
	require.NoError(t, err)

	list, err := svc.List(actorOf(w.avaliado), w.cycle.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, w.avaliado.ID, list[0].EvaluatedID)

	list, err = svc.List(actorOf(w.outsider), w.cycle.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, w.outsider.ID, list[0].EvaluatedID)

	list, err = svc.List(actorOf(w.admin), w.cycle.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.List(actorOf(w.utenteInt), w.cycle.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestObjective_UpdateAndDelete(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	obj, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	require.NoError(t, err)

	req := w.objectiveFor(w.avaliado)
	req.Score = ptr(4)
	updated, err := svc.Update(actorOf(w.dirigente), obj.ID, req)
	require.NoError(t, err)
	require.NotNil(t, updated.Score)
	assert.Equal(t, 4.0, *updated.Score)

	// moving the objective outside the actor's scope is refused
	_, err = svc.Update(actorOf(w.avaliador), obj.ID, w.objectiveFor(w.outsider))
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(actorOf(w.avaliador), obj.ID), ErrForbidden)
	assert.NoError(t, svc.Delete(actorOf(w.dirigente), obj.ID))
}

func TestObjective_WeightsCappedPerKind(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	first, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	require.NoError(t, err)

	req := w.objectiveFor(w.avaliado)
	req.Weight = 60
	_, err = svc.Create(actorOf(w.avaliador), req)
	assert.ErrorIs(t, err, ErrValidation)

	// the team kind has its own 100%
	req.Kind = model.ObjectiveEquipa
	_, err = svc.Create(actorOf(w.avaliador), req)
	require.NoError(t, err)

	// an objective does not count against itself
	req = w.objectiveFor(w.avaliado)
	req.Weight = 100
	_, err = svc.Update(actorOf(w.dirigente), first.ID, req)
	require.NoError(t, err)

	req.Weight = 0
	_, err = svc.Create(actorOf(w.avaliador), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestObjective_ScoresDriveSuperiorEvaluation(t *testing.T) {
	w := newWorld(t)
	objectives := w.objectiveService()

	ev, err := w.evaluationService().Submit(actorOf(w.avaliador), &EvaluationRequest{
		CycleID:          w.cycle.ID,
		EvaluatedID:      w.avaliado.ID,
		Type:             string(model.EvaluationSuperior),
		EvaluationScores: fullScores(),
	})
	require.NoError(t, err)
	require.NotNil(t, ev.NAF)

	stored := func() *model.Evaluation {
		got, err := w.evaluations.FindByID(ev.ID)
		require.NoError(t, err)
		return got
	}

	req := w.objectiveFor(w.avaliado)
	req.Weight = 70
	req.Score = ptr(4.1)
	primary, err := objectives.Create(actorOf(w.avaliador), req)
	require.NoError(t, err)

	// weights short of 100 leave the component and the NAF open
	got := stored()
	assert.Nil(t, got.Individual)
	assert.Nil(t, got.NAF)
	assert.Equal(t, 4.25, *got.Equipa, "team objectives absent, manual score kept")

	req = w.objectiveFor(w.avaliado)
	req.Weight = 30
	req.Score = ptr(3.7)
	_, err = objectives.Create(actorOf(w.avaliador), req)
	require.NoError(t, err)

	got = stored()
	require.NotNil(t, got.Individual)
	assert.InDelta(t, 3.98, *got.Individual, 1e-9)
	require.NotNil(t, got.NAF)
	// 3.98*40 + 4.25*20 + 4.4*20 + 4.3*20
	assert.InDelta(t, 4.182, *got.NAF, 1e-9)
	assert.Equal(t, scoring.GradeBom, got.Grade)

	// an unscored objective reopens the component
	req = w.objectiveFor(w.avaliado)
	req.Weight = 70
	_, err = objectives.Update(actorOf(w.dirigente), primary.ID, req)
	require.NoError(t, err)
	assert.Nil(t, stored().NAF)

	require.NoError(t, objectives.Delete(actorOf(w.dirigente), primary.ID))
	got = stored()
	assert.Nil(t, got.Individual, "remaining weights total 30")
}

func TestObjective_WriteRechecksCycleState(t *testing.T) {
	w := newWorld(t)
	svc := w.objectiveService()

	w.objectives.beforeWrite = func() { w.setState(permission.CycleFechado) }
	_, err := svc.Create(actorOf(w.avaliador), w.objectiveFor(w.avaliado))
	assert.ErrorIs(t, err, ErrCycleLocked)
	assert.Empty(t, w.objectives.objs)
}
