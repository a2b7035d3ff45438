package http

import (
	"encoding/json"
	"net/http"

	"github.com/certiflow/certiflow/internal/exam"

	"github.com/go-chi/chi/v5/middleware"
)

// errorResponse is the client-facing error envelope. RequestID lets a
// caller correlate a failure with server logs.
type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := exam.CodeOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"
	switch code {
	case exam.CodeNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case exam.CodeAlreadyScored:
		status, msg = http.StatusConflict, err.Error()
	case exam.CodeExamUnavailable:
		status, msg = http.StatusGone, err.Error()
	case exam.CodeInvalidSubmission, exam.CodeEmptyExam:
		status, msg = http.StatusBadRequest, err.Error()
	}
	codeStr := string(code)
	if codeStr == "" {
		codeStr = "INTERNAL"
	}
	writeJSON(w, status, errorResponse{
		RequestID: middleware.GetReqID(r.Context()),
		Code:      codeStr,
		Message:   msg,
	})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		RequestID: middleware.GetReqID(r.Context()),
		Code:      string(exam.CodeInvalidSubmission),
		Message:   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
