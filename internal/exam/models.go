package exam

// Status is the lifecycle state of a CandidateExam. A session is created
// in StatusCreated and transitions exactly once to StatusScored.
type Status string

const (
	StatusCreated Status = "created"
	StatusScored  Status = "scored"
)

type Option struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Label    string `json:"label"`
	Correct  bool   `json:"correct,omitempty"`
}

type Question struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
}

type Exam struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions,omitempty"`
	CreatedAt int64      `json:"created_at,omitempty"`
}

// CandidateExam is one candidate's attempt at one exam. Score fields stay
// zero until the session is sealed.
type CandidateExam struct {
	ID             string  `json:"id"`
	CandidateID    string  `json:"candidate_id"`
	ExamID         string  `json:"exam_id"`
	Status         Status  `json:"status"`
	AssessmentCode string  `json:"assessment_code,omitempty"`
	MaxScore       int     `json:"max_score"`
	CandidateScore int     `json:"candidate_score"`
	PercentScore   float64 `json:"percent_score"`
	Passed         bool    `json:"passed"`
	CreatedAt      int64   `json:"created_at"`
	ReportDate     int64   `json:"report_date,omitempty"`
}

// CandidateExamAnswer is the immutable per-question row written as part of
// the sealing transaction. Never mutated afterward.
type CandidateExamAnswer struct {
	ID              int64  `json:"id"`
	CandidateExamID string `json:"candidate_exam_id"`
	QuestionID      string `json:"question_id"`
	ChosenOptionID  string `json:"chosen_option_id"`
	CorrectOptionID string `json:"correct_option_id"`
	Correct         bool   `json:"correct"`
}

// Answer is one entry of a candidate's submission.
type Answer struct {
	QuestionID     string `json:"question_id"`
	ChosenOptionID string `json:"chosen_option_id"`
}

// AnswerRecord is the scoring engine's audit output for one submitted
// answer: what was chosen, what was correct, whether they matched.
type AnswerRecord struct {
	QuestionID      string
	ChosenOptionID  string
	CorrectOptionID string
	Correct         bool
}

// Verdict is the computed outcome of one scoring pass.
type Verdict struct {
	MaxScore       int
	CandidateScore int
	PercentScore   float64
	Passed         bool
	Answers        []AnswerRecord
}

// SessionView is a CandidateExam together with its persisted answer rows.
type SessionView struct {
	CandidateExam
	Answers []CandidateExamAnswer `json:"answers,omitempty"`
}
