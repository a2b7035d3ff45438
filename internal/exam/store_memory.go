package exam

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySessionStore keeps sessions in process memory. It honors the same
// conditional-seal contract as the SQL store and is used by tests and
// single-process setups.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]CandidateExam
	answers  map[string][]CandidateExamAnswer
	nextID   int64
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: map[string]CandidateExam{},
		answers:  map[string][]CandidateExamAnswer{},
	}
}

func (m *MemorySessionStore) CreateCandidateExam(_ context.Context, candidateID, examID string) (CandidateExam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ce := CandidateExam{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		ExamID:      examID,
		Status:      StatusCreated,
		CreatedAt:   time.Now().Unix(),
	}
	m.sessions[ce.ID] = ce
	return ce, nil
}

func (m *MemorySessionStore) GetCandidateExam(_ context.Context, id string) (CandidateExam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ce, ok := m.sessions[id]
	if !ok {
		return CandidateExam{}, NewError(CodeNotFound, "candidate exam not found")
	}
	return ce, nil
}

func (m *MemorySessionStore) TrySealWithScore(_ context.Context, id, assessmentCode string, v Verdict) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ce, ok := m.sessions[id]
	if !ok {
		return false, NewError(CodeNotFound, "candidate exam not found")
	}
	if ce.Status != StatusCreated {
		return false, nil
	}
	ce.Status = StatusScored
	ce.AssessmentCode = assessmentCode
	ce.MaxScore = v.MaxScore
	ce.CandidateScore = v.CandidateScore
	ce.PercentScore = v.PercentScore
	ce.Passed = v.Passed
	ce.ReportDate = time.Now().Unix()
	m.sessions[id] = ce

	rows := make([]CandidateExamAnswer, 0, len(v.Answers))
	for _, rec := range v.Answers {
		m.nextID++
		rows = append(rows, CandidateExamAnswer{
			ID:              m.nextID,
			CandidateExamID: id,
			QuestionID:      rec.QuestionID,
			ChosenOptionID:  rec.ChosenOptionID,
			CorrectOptionID: rec.CorrectOptionID,
			Correct:         rec.Correct,
		})
	}
	m.answers[id] = rows
	return true, nil
}

func (m *MemorySessionStore) ListAnswers(_ context.Context, candidateExamID string) ([]CandidateExamAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CandidateExamAnswer, len(m.answers[candidateExamID]))
	copy(out, m.answers[candidateExamID])
	return out, nil
}
