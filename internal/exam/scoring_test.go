package exam_test

import (
	"fmt"
	"testing"

	"github.com/certiflow/certiflow/internal/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourQuestionExam builds an exam whose correct options are A, B, A, C.
// Option ids are "<question>-<letter>".
func fourQuestionExam() []exam.Question {
	correct := []string{"a", "b", "a", "c"}
	qs := make([]exam.Question, 0, len(correct))
	for i, c := range correct {
		qid := fmt.Sprintf("q%d", i+1)
		q := exam.Question{ID: qid, Position: i + 1, Prompt: fmt.Sprintf("question %d", i+1)}
		for j, letter := range []string{"a", "b", "c", "d"} {
			q.Options = append(q.Options, exam.Option{
				ID:       qid + "-" + letter,
				Position: j + 1,
				Label:    letter,
				Correct:  letter == c,
			})
		}
		qs = append(qs, q)
	}
	return qs
}

func answers(letters ...string) []exam.Answer {
	out := make([]exam.Answer, 0, len(letters))
	for i, l := range letters {
		qid := fmt.Sprintf("q%d", i+1)
		out = append(out, exam.Answer{QuestionID: qid, ChosenOptionID: qid + "-" + l})
	}
	return out
}

func TestScore_PassingSubmission(t *testing.T) {
	v, err := exam.Score(fourQuestionExam(), answers("a", "b", "b", "c"), 65)
	require.NoError(t, err)

	assert.Equal(t, 4, v.MaxScore)
	assert.Equal(t, 3, v.CandidateScore)
	assert.InDelta(t, 75.0, v.PercentScore, 1e-9)
	assert.True(t, v.Passed)
	require.Len(t, v.Answers, 4)
	assert.True(t, v.Answers[0].Correct)
	assert.False(t, v.Answers[2].Correct)
	assert.Equal(t, "q3-a", v.Answers[2].CorrectOptionID)
	assert.Equal(t, "q3-b", v.Answers[2].ChosenOptionID)
}

func TestScore_AllWrong(t *testing.T) {
	v, err := exam.Score(fourQuestionExam(), answers("b", "a", "b", "a"), 65)
	require.NoError(t, err)

	assert.Equal(t, 0, v.CandidateScore)
	assert.InDelta(t, 0.0, v.PercentScore, 1e-9)
	assert.False(t, v.Passed)
}

func TestScore_EmptyExam(t *testing.T) {
	_, err := exam.Score(nil, nil, 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeEmptyExam, exam.CodeOf(err))
}

func TestScore_UnknownQuestion(t *testing.T) {
	subs := answers("a", "b")
	subs[1].QuestionID = "q99"
	subs[1].ChosenOptionID = "q99-a"
	_, err := exam.Score(fourQuestionExam(), subs, 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeInvalidSubmission, exam.CodeOf(err))
}

func TestScore_ForeignOption(t *testing.T) {
	subs := answers("a")
	subs[0].ChosenOptionID = "q2-a" // belongs to a different question
	_, err := exam.Score(fourQuestionExam(), subs, 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeInvalidSubmission, exam.CodeOf(err))
}

func TestScore_DuplicateAnswer(t *testing.T) {
	subs := append(answers("a"), exam.Answer{QuestionID: "q1", ChosenOptionID: "q1-b"})
	_, err := exam.Score(fourQuestionExam(), subs, 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeInvalidSubmission, exam.CodeOf(err))
}

func TestScore_UnansweredCountAsIncorrect(t *testing.T) {
	// Only the first two questions answered, both correctly.
	v, err := exam.Score(fourQuestionExam(), answers("a", "b"), 65)
	require.NoError(t, err)

	assert.Equal(t, 4, v.MaxScore)
	assert.Equal(t, 2, v.CandidateScore)
	assert.InDelta(t, 50.0, v.PercentScore, 1e-9)
	assert.False(t, v.Passed)
	// Answer rows exist only for submitted answers.
	assert.Len(t, v.Answers, 2)
}

func TestScore_ThresholdBoundary(t *testing.T) {
	// 50% exactly meets a 50 threshold.
	v, err := exam.Score(fourQuestionExam(), answers("a", "b"), 50)
	require.NoError(t, err)
	assert.True(t, v.Passed)

	v, err = exam.Score(fourQuestionExam(), answers("a", "b"), 50.1)
	require.NoError(t, err)
	assert.False(t, v.Passed)
}

func TestScore_Deterministic(t *testing.T) {
	qs := fourQuestionExam()
	subs := answers("a", "b", "b", "c")
	v1, err := exam.Score(qs, subs, 65)
	require.NoError(t, err)
	v2, err := exam.Score(qs, subs, 65)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestScore_Bounds(t *testing.T) {
	qs := fourQuestionExam()
	for _, subs := range [][]exam.Answer{
		nil,
		answers("a"),
		answers("d", "d", "d", "d"),
		answers("a", "b", "a", "c"),
	} {
		v, err := exam.Score(qs, subs, 65)
		require.NoError(t, err)
		assert.Equal(t, len(qs), v.MaxScore)
		assert.GreaterOrEqual(t, v.CandidateScore, 0)
		assert.LessOrEqual(t, v.CandidateScore, v.MaxScore)
		assert.InDelta(t, float64(v.CandidateScore)/float64(v.MaxScore)*100, v.PercentScore, 1e-9)
	}
}

func TestScore_QuestionWithoutCorrectOption(t *testing.T) {
	qs := fourQuestionExam()
	for i := range qs[1].Options {
		qs[1].Options[i].Correct = false
	}
	_, err := exam.Score(qs, answers("a"), 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeExamUnavailable, exam.CodeOf(err))
}

func TestScore_QuestionWithMultipleCorrectOptions(t *testing.T) {
	qs := fourQuestionExam()
	for i := range qs[1].Options {
		qs[1].Options[i].Correct = true
	}
	_, err := exam.Score(qs, answers("a", "b", "a", "c"), 65)
	require.Error(t, err)
	assert.Equal(t, exam.CodeExamUnavailable, exam.CodeOf(err))
}
