package exam

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultAssessmentCode tags results with the scoring scheme version.
const DefaultAssessmentCode = "CB"

// EventLog records domain events after a successful seal. Append failures
// must not fail the submission.
type EventLog interface {
	Append(ctx context.Context, typ, key string, data interface{}) error
}

type ServiceConfig struct {
	PassThreshold  float64
	AssessmentCode string
}

// Service orchestrates one scoring pass: load session, load questions,
// score, seal. Collaborators are injected; there is no ambient state.
type Service struct {
	catalog   Catalog
	sessions  SessionStore
	events    EventLog
	log       *zap.Logger
	threshold float64
	code      string
}

func NewService(catalog Catalog, sessions SessionStore, events EventLog, log *zap.Logger, cfg ServiceConfig) *Service {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = DefaultPassThreshold
	}
	if cfg.AssessmentCode == "" {
		cfg.AssessmentCode = DefaultAssessmentCode
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:   catalog,
		sessions:  sessions,
		events:    events,
		log:       log,
		threshold: cfg.PassThreshold,
		code:      cfg.AssessmentCode,
	}
}

// StartSession creates a CandidateExam in the created state.
func (s *Service) StartSession(ctx context.Context, candidateID, examID string) (CandidateExam, error) {
	if _, err := s.catalog.GetExam(ctx, examID); err != nil {
		return CandidateExam{}, err
	}
	ce, err := s.sessions.CreateCandidateExam(ctx, candidateID, examID)
	if err != nil {
		return CandidateExam{}, fmt.Errorf("create candidate exam: %w", err)
	}
	s.log.Info("candidate exam created",
		zap.String("candidate_exam_id", ce.ID),
		zap.String("candidate_id", candidateID),
		zap.String("exam_id", examID))
	return ce, nil
}

// SubmitExam runs the single authoritative scoring pass for a session.
// Retried submissions after a successful score get AlreadyScored; the
// conditional seal in the store makes this hold across service instances.
func (s *Service) SubmitExam(ctx context.Context, candidateExamID string, answers []Answer) (CandidateExam, error) {
	ce, err := s.getCandidateExam(ctx, candidateExamID)
	if err != nil {
		return CandidateExam{}, err
	}
	if ce.Status == StatusScored {
		return CandidateExam{}, NewError(CodeAlreadyScored, "candidate exam is already scored")
	}

	questions, err := s.getQuestions(ctx, ce.ExamID)
	if err != nil {
		return CandidateExam{}, err
	}

	verdict, err := Score(questions, answers, s.threshold)
	if err != nil {
		return CandidateExam{}, err
	}

	// The sealing write is never retried here: a failed attempt could have
	// committed, and a blind retry would race the AlreadyScored guard.
	sealed, err := s.sessions.TrySealWithScore(ctx, candidateExamID, s.code, verdict)
	if err != nil {
		return CandidateExam{}, fmt.Errorf("seal candidate exam %s: %w", candidateExamID, err)
	}
	if !sealed {
		return CandidateExam{}, NewError(CodeAlreadyScored, "candidate exam is already scored")
	}

	out, err := s.sessions.GetCandidateExam(ctx, candidateExamID)
	if err != nil {
		return CandidateExam{}, err
	}

	if s.events != nil {
		if err := s.events.Append(ctx, "SessionScored", out.ID, out); err != nil {
			s.log.Warn("event log append failed",
				zap.String("candidate_exam_id", out.ID), zap.Error(err))
		}
	}
	s.log.Info("candidate exam scored",
		zap.String("candidate_exam_id", out.ID),
		zap.Int("max_score", out.MaxScore),
		zap.Int("candidate_score", out.CandidateScore),
		zap.Float64("percent_score", out.PercentScore),
		zap.Bool("passed", out.Passed))
	return out, nil
}

// GetSession returns the session and, once scored, its answer rows.
func (s *Service) GetSession(ctx context.Context, candidateExamID string) (SessionView, error) {
	ce, err := s.getCandidateExam(ctx, candidateExamID)
	if err != nil {
		return SessionView{}, err
	}
	view := SessionView{CandidateExam: ce}
	if ce.Status == StatusScored {
		answers, err := s.sessions.ListAnswers(ctx, candidateExamID)
		if err != nil {
			return SessionView{}, err
		}
		view.Answers = answers
	}
	return view, nil
}

// Idempotent reads are retried once on infrastructure failures; domain
// errors and cancellations pass through.
func (s *Service) getCandidateExam(ctx context.Context, id string) (CandidateExam, error) {
	ce, err := s.sessions.GetCandidateExam(ctx, id)
	if err != nil && retryableRead(ctx, err) {
		s.log.Warn("retrying session read", zap.String("candidate_exam_id", id), zap.Error(err))
		ce, err = s.sessions.GetCandidateExam(ctx, id)
	}
	return ce, err
}

func (s *Service) getQuestions(ctx context.Context, examID string) ([]Question, error) {
	qs, err := s.catalog.GetQuestionsWithOptions(ctx, examID)
	if err != nil && retryableRead(ctx, err) {
		s.log.Warn("retrying question load", zap.String("exam_id", examID), zap.Error(err))
		qs, err = s.catalog.GetQuestionsWithOptions(ctx, examID)
	}
	return qs, err
}

func retryableRead(ctx context.Context, err error) bool {
	if CodeOf(err) != "" {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return ctx.Err() == nil
}
