package http

import (
	"encoding/json"
	"net/http"

	"github.com/certiflow/certiflow/internal/exam"

	"github.com/go-chi/chi/v5"
)

// GetExamHandler serves the candidate-facing exam snapshot. Correctness
// flags are stripped by the catalog before it reaches the wire.
func GetExamHandler(catalog exam.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		e, err := catalog.GetExam(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func UpsertExamHandler(catalog exam.CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeBadRequest(w, r, "bad json")
			return
		}
		if e.ID == "" {
			writeBadRequest(w, r, "exam id required")
			return
		}
		if err := catalog.PutExam(r.Context(), e); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": e.ID})
	}
}
