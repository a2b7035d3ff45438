package http

import (
	"encoding/json"
	"net/http"
	"time"

	auth "github.com/certiflow/certiflow/internal/auth/middleware"
	"github.com/certiflow/certiflow/internal/exam"
	"github.com/certiflow/certiflow/internal/metrics"

	"github.com/go-chi/chi/v5"
)

func CreateSessionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CandidateID string `json:"candidate_id"`
			ExamID      string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, r, "bad json")
			return
		}
		if req.CandidateID == "" || req.ExamID == "" {
			writeBadRequest(w, r, "candidate_id and exam_id required")
			return
		}
		ce, err := svc.StartSession(r.Context(), req.CandidateID, req.ExamID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		metrics.SessionsStarted.Inc()
		writeJSON(w, http.StatusCreated, ce)
	}
}

func SubmitExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := chi.URLParam(r, "candidateExamID")
		var answers []exam.Answer
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			writeBadRequest(w, r, "bad json")
			return
		}
		ce, err := svc.SubmitExam(r.Context(), id, answers)
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			outcome := string(exam.CodeOf(err))
			if outcome == "" {
				outcome = "INTERNAL"
			}
			metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
			writeError(w, r, err)
			return
		}
		metrics.SubmissionsTotal.WithLabelValues("scored").Inc()
		writeJSON(w, http.StatusOK, ce)
	}
}

// SessionOwner reports whether the authenticated subject is the candidate
// the session in the URL belongs to. Used with rbac.RequireOwnerOr so
// candidates only read their own sessions.
func SessionOwner(svc *exam.Service) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		sub := auth.SubjectFromContext(r.Context())
		if sub == "" {
			return false
		}
		view, err := svc.GetSession(r.Context(), chi.URLParam(r, "candidateExamID"))
		if err != nil {
			return false
		}
		return view.CandidateID == sub
	}
}

func GetSessionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "candidateExamID")
		view, err := svc.GetSession(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
