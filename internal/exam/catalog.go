package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Catalog is the read interface over the exam/question/option records. The
// scoring side never writes through it; questions loaded for one scoring
// call are treated as a consistent snapshot.
type Catalog interface {
	// GetExam returns the exam with its questions, correctness flags
	// stripped. Candidate-facing.
	GetExam(ctx context.Context, id string) (Exam, error)
	// GetQuestionsWithOptions returns the full question set including
	// which option is correct, ordered by position.
	GetQuestionsWithOptions(ctx context.Context, examID string) ([]Question, error)
}

// CatalogAdmin is the authoring-side write surface, used for seeding and
// exam upload.
type CatalogAdmin interface {
	PutExam(ctx context.Context, e Exam) error
}

type SQLCatalog struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLCatalog(db *sql.DB, driver string) *SQLCatalog {
	return &SQLCatalog{db: db, driver: driver}
}

func (c *SQLCatalog) GetExam(ctx context.Context, id string) (Exam, error) {
	row := c.db.QueryRowContext(ctx, `SELECT id,title,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	if err := row.Scan(&e.ID, &e.Title, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, NewError(CodeNotFound, "exam not found")
		}
		return Exam{}, err
	}
	qs, err := c.questions(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	// Strip correctness flags when serving to candidates.
	for i := range qs {
		for j := range qs[i].Options {
			qs[i].Options[j].Correct = false
		}
	}
	e.Questions = qs
	return e, nil
}

func (c *SQLCatalog) GetQuestionsWithOptions(ctx context.Context, examID string) ([]Question, error) {
	var exist int
	if err := c.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewError(CodeExamUnavailable, "exam no longer exists")
		}
		return nil, err
	}
	return c.questions(ctx, examID)
}

func (c *SQLCatalog) questions(ctx context.Context, examID string) ([]Question, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id,position,prompt FROM questions WHERE exam_id=$1 ORDER BY position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var qs []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Position, &q.Prompt); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range qs {
		opts, err := c.options(ctx, qs[i].ID)
		if err != nil {
			return nil, err
		}
		qs[i].Options = opts
	}
	return qs, nil
}

func (c *SQLCatalog) options(ctx context.Context, questionID string) ([]Option, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id,position,label,is_correct FROM options WHERE question_id=$1 ORDER BY position`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var opts []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Position, &o.Label, &o.Correct); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// PutExam upserts an exam and replaces its question set in one transaction.
func (c *SQLCatalog) PutExam(ctx context.Context, e Exam) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO exams (id,title,created_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title`,
		e.ID, e.Title, time.Now().Unix())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, e.ID); err != nil {
		return err
	}
	for _, q := range e.Questions {
		_, err := tx.ExecContext(ctx, `INSERT INTO questions (id,exam_id,position,prompt)
			VALUES ($1,$2,$3,$4)`, q.ID, e.ID, q.Position, q.Prompt)
		if err != nil {
			return err
		}
		for _, o := range q.Options {
			_, err := tx.ExecContext(ctx, `INSERT INTO options (id,question_id,position,label,is_correct)
				VALUES ($1,$2,$3,$4,$5)`, o.ID, q.ID, o.Position, o.Label, o.Correct)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
