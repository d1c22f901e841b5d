package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"sgad-api/internal/middleware"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvaluations struct {
	service.EvaluationService
	submit func(service.Actor, *service.EvaluationRequest) (*model.Evaluation, error)
}

func (s stubEvaluations) Submit(a service.Actor, req *service.EvaluationRequest) (*model.Evaluation, error) {
	return s.submit(a, req)
}

type stubCycles struct {
	service.CycleService
	transition func(service.Actor, uuid.UUID, string, string) (*model.Cycle, error)
}

func (s stubCycles) Transition(a service.Actor, id uuid.UUID, to, note string) (*model.Cycle, error) {
	return s.transition(a, id, to, note)
}

type stubReports struct {
	service.ReportService
	sheet func(service.Actor, uuid.UUID, string) ([]byte, error)
}

func (s stubReports) EvaluationSheet(a service.Actor, id uuid.UUID, tpl string) ([]byte, error) {
	return s.sheet(a, id, tpl)
}

var testActor = service.Actor{UserID: uuid.New(), Role: permission.RoleAvaliador, Name: "Avaliador"}

func newTestApp(withActor bool) *fiber.App {
	app := fiber.New()
	if withActor {
		app.Use(func(c *fiber.Ctx) error {
			middleware.SetActor(c, testActor)
			return c.Next()
		})
	}
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestSubmitEvaluation_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden, "Forbidden"},
		{"locked", service.ErrCycleLocked, fiber.StatusForbidden, service.ErrCycleLocked.Error()},
		{"validation", fmt.Errorf("%w: bad score", service.ErrValidation), fiber.StatusBadRequest, "validation failed: bad score"},
		{"conflict", fmt.Errorf("%w: evaluation already submitted", service.ErrConflict), fiber.StatusConflict, "conflicting state: evaluation already submitted"},
		{"not found", fmt.Errorf("%w: cycle", service.ErrNotFound), fiber.StatusNotFound, "record not found: cycle"},
		{"internal", fmt.Errorf("connection reset"), fiber.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewEvaluationHandler(stubEvaluations{submit: func(service.Actor, *service.EvaluationRequest) (*model.Evaluation, error) {
				return nil, tc.err
			}}, nil)
			app := newTestApp(true)
			app.Post("/evaluations", h.SubmitEvaluation)

			status, body := do(t, app, "POST", "/evaluations", `{"type":"superior"}`)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestSubmitEvaluation_Created(t *testing.T) {
	var got service.Actor
	var gotReq *service.EvaluationRequest
	h := NewEvaluationHandler(stubEvaluations{submit: func(a service.Actor, req *service.EvaluationRequest) (*model.Evaluation, error) {
		got, gotReq = a, req
		naf := 4.43
		return &model.Evaluation{Type: model.EvaluationSuperior, NAF: &naf}, nil
	}}, nil)
	app := newTestApp(true)
	app.Post("/evaluations", h.SubmitEvaluation)

	evaluated := uuid.New()
	status, body := do(t, app, "POST", "/evaluations",
		fmt.Sprintf(`{"cycle_id":%q,"evaluated_id":%q,"type":"superior","individual":4.6}`, uuid.New(), evaluated))
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, testActor.UserID, got.UserID)
	require.NotNil(t, gotReq)
	assert.Equal(t, evaluated, gotReq.EvaluatedID)
	require.NotNil(t, gotReq.Individual)
	assert.Equal(t, 4.6, *gotReq.Individual)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, 4.43, data["naf"])
}

func TestSubmitEvaluation_BadRequest(t *testing.T) {
	h := NewEvaluationHandler(stubEvaluations{}, nil)

	app := newTestApp(true)
	app.Post("/evaluations", h.SubmitEvaluation)
	status, _ := do(t, app, "POST", "/evaluations", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	anon := newTestApp(false)
	anon.Post("/evaluations", h.SubmitEvaluation)
	status, _ = do(t, anon, "POST", "/evaluations", `{}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestTransitionCycle(t *testing.T) {
	cycleID := uuid.New()
	h := NewCycleHandler(stubCycles{transition: func(_ service.Actor, id uuid.UUID, to, note string) (*model.Cycle, error) {
		if to != "em_acompanhamento" {
			return nil, fmt.Errorf("%w: %w", service.ErrConflict, permission.ErrInvalidTransition)
		}
		c := &model.Cycle{State: permission.CycleState(to)}
		c.ID = id
		return c, nil
	}})
	app := newTestApp(true)
	app.Post("/cycles/:id/transition", h.TransitionCycle)

	status, body := do(t, app, "POST", "/cycles/"+cycleID.String()+"/transition", `{"state":"em_acompanhamento"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "em_acompanhamento", body["data"].(map[string]interface{})["state"])

	status, _ = do(t, app, "POST", "/cycles/"+cycleID.String()+"/transition", `{"state":"homologado"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = do(t, app, "POST", "/cycles/not-a-uuid/transition", `{"state":"fechado"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEvaluationSheetPDF(t *testing.T) {
	evID := uuid.New()
	var gotTemplate string
	h := NewReportHandler(stubReports{sheet: func(_ service.Actor, id uuid.UUID, tpl string) ([]byte, error) {
		if id != evID {
			return nil, service.ErrNotFound
		}
		gotTemplate = tpl
		return []byte("%PDF-1.3 fake"), nil
	}})
	app := newTestApp(true)
	app.Get("/reports/evaluations/:id.pdf", h.EvaluationSheet)

	req := httptest.NewRequest("GET", "/reports/evaluations/"+evID.String()+".pdf?template=ficha_simplificada", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ficha_simplificada", gotTemplate)

	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF-"))

	status, _ := do(t, app, "GET", "/reports/evaluations/"+uuid.New().String()+".pdf", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
