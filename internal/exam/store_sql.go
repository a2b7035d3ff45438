package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStore owns CandidateExam and CandidateExamAnswer state. Only the
// sealing transaction mutates a session after creation.
type SessionStore interface {
	CreateCandidateExam(ctx context.Context, candidateID, examID string) (CandidateExam, error)
	GetCandidateExam(ctx context.Context, id string) (CandidateExam, error)
	// TrySealWithScore transitions the session created -> scored and writes
	// one answer row per submitted answer, all in one transaction. Returns
	// false (and no error) if the session was already sealed.
	TrySealWithScore(ctx context.Context, id, assessmentCode string, v Verdict) (bool, error)
	ListAnswers(ctx context.Context, candidateExamID string) ([]CandidateExamAnswer, error)
}

type SQLSessionStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLSessionStore(db *sql.DB, driver string) *SQLSessionStore {
	return &SQLSessionStore{db: db, driver: driver}
}

func (s *SQLSessionStore) CreateCandidateExam(ctx context.Context, candidateID, examID string) (CandidateExam, error) {
	ce := CandidateExam{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		ExamID:      examID,
		Status:      StatusCreated,
		CreatedAt:   time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO candidate_exams (id,candidate_id,exam_id,status,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		ce.ID, ce.CandidateID, ce.ExamID, ce.Status, ce.CreatedAt)
	if err != nil {
		return CandidateExam{}, err
	}
	return ce, nil
}

func (s *SQLSessionStore) GetCandidateExam(ctx context.Context, id string) (CandidateExam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,candidate_id,exam_id,status,assessment_code,max_score,candidate_score,percent_score,result,created_at,report_date
		FROM candidate_exams WHERE id=$1`, id)
	var ce CandidateExam
	var report sql.NullInt64
	err := row.Scan(&ce.ID, &ce.CandidateID, &ce.ExamID, &ce.Status, &ce.AssessmentCode,
		&ce.MaxScore, &ce.CandidateScore, &ce.PercentScore, &ce.Passed, &ce.CreatedAt, &report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CandidateExam{}, NewError(CodeNotFound, "candidate exam not found")
		}
		return CandidateExam{}, err
	}
	if report.Valid {
		ce.ReportDate = report.Int64
	}
	return ce, nil
}

func (s *SQLSessionStore) TrySealWithScore(ctx context.Context, id, assessmentCode string, v Verdict) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Conditional update is the idempotency boundary: zero rows affected
	// means another submission already sealed this session.
	res, err := tx.ExecContext(ctx, `UPDATE candidate_exams
		SET status=$1, assessment_code=$2, max_score=$3, candidate_score=$4, percent_score=$5, result=$6, report_date=$7
		WHERE id=$8 AND status=$9`,
		StatusScored, assessmentCode, v.MaxScore, v.CandidateScore, v.PercentScore, v.Passed,
		time.Now().Unix(), id, StatusCreated)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	for _, rec := range v.Answers {
		_, err := tx.ExecContext(ctx, `INSERT INTO candidate_exam_answers (candidate_exam_id,question_id,chosen_option_id,correct_option_id,is_correct)
			VALUES ($1,$2,$3,$4,$5)`,
			id, rec.QuestionID, rec.ChosenOptionID, rec.CorrectOptionID, rec.Correct)
		if err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLSessionStore) ListAnswers(ctx context.Context, candidateExamID string) ([]CandidateExamAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,candidate_exam_id,question_id,chosen_option_id,correct_option_id,is_correct
		FROM candidate_exam_answers WHERE candidate_exam_id=$1 ORDER BY id`, candidateExamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []CandidateExamAnswer
	for rows.Next() {
		var a CandidateExamAnswer
		if err := rows.Scan(&a.ID, &a.CandidateExamID, &a.QuestionID, &a.ChosenOptionID, &a.CorrectOptionID, &a.Correct); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
