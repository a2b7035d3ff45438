package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/certiflow/certiflow/internal/api/http"
	auth "github.com/certiflow/certiflow/internal/auth/middleware"
	"github.com/certiflow/certiflow/internal/exam"
	"github.com/certiflow/certiflow/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	questions map[string][]exam.Question
}

func (c *stubCatalog) GetExam(_ context.Context, id string) (exam.Exam, error) {
	if _, ok := c.questions[id]; !ok {
		return exam.Exam{}, exam.NewError(exam.CodeNotFound, "exam not found")
	}
	return exam.Exam{ID: id, Title: "exam " + id}, nil
}

func (c *stubCatalog) GetQuestionsWithOptions(_ context.Context, examID string) ([]exam.Question, error) {
	qs, ok := c.questions[examID]
	if !ok {
		return nil, exam.NewError(exam.CodeExamUnavailable, "exam no longer exists")
	}
	return qs, nil
}

func testQuestions() []exam.Question {
	correct := []string{"a", "b", "a", "c"}
	qs := make([]exam.Question, 0, len(correct))
	for i, c := range correct {
		qid := fmt.Sprintf("q%d", i+1)
		q := exam.Question{ID: qid, Position: i + 1, Prompt: "q"}
		for j, letter := range []string{"a", "b", "c", "d"} {
			q.Options = append(q.Options, exam.Option{
				ID: qid + "-" + letter, Position: j + 1, Label: letter, Correct: letter == c,
			})
		}
		qs = append(qs, q)
	}
	return qs
}

func newTestRouter(t *testing.T) (*chi.Mux, *exam.Service) {
	t.Helper()
	catalog := &stubCatalog{questions: map[string][]exam.Question{"cert-101": testQuestions()}}
	svc := exam.NewService(catalog, exam.NewMemorySessionStore(), nil, nil, exam.ServiceConfig{})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/exams/sessions", api.CreateSessionHandler(svc))
	r.Post("/exams/sessions/{candidateExamID}/submit", api.SubmitExamHandler(svc))
	r.Get("/exams/sessions/{candidateExamID}", api.GetSessionHandler(svc))
	return r, svc
}

func startSession(t *testing.T, r http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/exams/sessions",
		strings.NewReader(`{"candidate_id":"cand-1","exam_id":"cert-101"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ce exam.CandidateExam
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ce))
	return ce.ID
}

func TestSubmitExamHandler_Scores(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	body := `[
		{"question_id":"q1","chosen_option_id":"q1-a"},
		{"question_id":"q2","chosen_option_id":"q2-b"},
		{"question_id":"q3","chosen_option_id":"q3-b"},
		{"question_id":"q4","chosen_option_id":"q4-c"}
	]`
	req := httptest.NewRequest("POST", "/exams/sessions/"+id+"/submit", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ce exam.CandidateExam
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ce))
	assert.Equal(t, 4, ce.MaxScore)
	assert.Equal(t, 3, ce.CandidateScore)
	assert.InDelta(t, 75.0, ce.PercentScore, 1e-9)
	assert.True(t, ce.Passed)
	assert.NotZero(t, ce.ReportDate)
}

func TestSubmitExamHandler_Resubmit_Conflict(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	body := `[{"question_id":"q1","chosen_option_id":"q1-a"}]`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions/"+id+"/submit", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions/"+id+"/submit", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		RequestID string `json:"request_id"`
		Code      string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ALREADY_SCORED", resp.Code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestSubmitExamHandler_UnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions/ghost/submit", strings.NewReader(`[]`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitExamHandler_BadJSON(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions/"+id+"/submit", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitExamHandler_InvalidSubmission(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)
	body := `[{"question_id":"q99","chosen_option_id":"q99-a"}]`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions/"+id+"/submit", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SUBMISSION", resp.Code)
}

func TestGetSessionHandler(t *testing.T) {
	r, _ := newTestRouter(t)
	id := startSession(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/exams/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var view exam.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, exam.StatusCreated, view.Status)
	assert.Empty(t, view.Answers)
}

// newSecuredRouter mirrors the gateway's GET-session route, with the
// caller's identity injected from request headers instead of a JWT.
func newSecuredRouter(t *testing.T) *chi.Mux {
	t.Helper()
	catalog := &stubCatalog{questions: map[string][]exam.Question{"cert-101": testQuestions()}}
	svc := exam.NewService(catalog, exam.NewMemorySessionStore(), nil, nil, exam.ServiceConfig{})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithSubject(req.Context(), req.Header.Get("X-Subject"))
			ctx = rbac.WithRole(ctx, req.Header.Get("X-Role"))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/exams/sessions", api.CreateSessionHandler(svc))
	r.With(rbac.RequireOwnerOr("session:view-all", api.SessionOwner(svc))).
		Get("/exams/sessions/{candidateExamID}", api.GetSessionHandler(svc))
	return r
}

func TestGetSessionHandler_OwnershipEnforced(t *testing.T) {
	r := newSecuredRouter(t)
	id := startSession(t, r)

	get := func(subject, role string) int {
		req := httptest.NewRequest("GET", "/exams/sessions/"+id, nil)
		req.Header.Set("X-Subject", subject)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// The owning candidate reads their own session.
	assert.Equal(t, http.StatusOK, get("cand-1", "candidate"))
	// Another candidate is rejected.
	assert.Equal(t, http.StatusForbidden, get("cand-2", "candidate"))
	// A marker holds session:view-all and may read any session.
	assert.Equal(t, http.StatusOK, get("marker-1", "marker"))
	// No identity at all is rejected too.
	assert.Equal(t, http.StatusForbidden, get("", ""))
}

func TestCreateSessionHandler_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/exams/sessions", strings.NewReader(`{"exam_id":"cert-101"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
