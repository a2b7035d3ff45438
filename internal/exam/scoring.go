package exam

// DefaultPassThreshold is the percentage a candidate must reach to pass.
const DefaultPassThreshold = 65.0

// Score computes the verdict for one submission against the authoritative
// question set. It is pure and deterministic: no I/O, no clock, identical
// inputs always yield the identical verdict.
//
// Answers pair to questions by question id. A question the candidate left
// unanswered counts as incorrect; an answer naming an unknown question or
// an option that does not belong to its question is rejected outright.
func Score(questions []Question, answers []Answer, passThreshold float64) (Verdict, error) {
	if len(questions) == 0 {
		return Verdict{}, NewError(CodeEmptyExam, "exam has no questions")
	}

	correct := make(map[string]string, len(questions))
	options := make(map[string]map[string]struct{}, len(questions))
	for _, q := range questions {
		set := make(map[string]struct{}, len(q.Options))
		var correctID string
		for _, o := range q.Options {
			set[o.ID] = struct{}{}
			if o.Correct {
				if correctID != "" {
					return Verdict{}, Errorf(CodeExamUnavailable, "question %s has more than one correct option", q.ID)
				}
				correctID = o.ID
			}
		}
		// The catalog guarantees exactly one correct option per question;
		// a question violating that is catalog inconsistency, not a bad submission.
		if correctID == "" {
			return Verdict{}, Errorf(CodeExamUnavailable, "question %s has no correct option", q.ID)
		}
		correct[q.ID] = correctID
		options[q.ID] = set
	}

	answered := make(map[string]struct{}, len(answers))
	records := make([]AnswerRecord, 0, len(answers))
	score := 0
	for _, a := range answers {
		correctID, ok := correct[a.QuestionID]
		if !ok {
			return Verdict{}, Errorf(CodeInvalidSubmission, "question %s is not part of the exam", a.QuestionID)
		}
		if _, dup := answered[a.QuestionID]; dup {
			return Verdict{}, Errorf(CodeInvalidSubmission, "duplicate answer for question %s", a.QuestionID)
		}
		answered[a.QuestionID] = struct{}{}
		if _, ok := options[a.QuestionID][a.ChosenOptionID]; !ok {
			return Verdict{}, Errorf(CodeInvalidSubmission, "option %s does not belong to question %s", a.ChosenOptionID, a.QuestionID)
		}
		rec := AnswerRecord{
			QuestionID:      a.QuestionID,
			ChosenOptionID:  a.ChosenOptionID,
			CorrectOptionID: correctID,
			Correct:         a.ChosenOptionID == correctID,
		}
		if rec.Correct {
			score++
		}
		records = append(records, rec)
	}

	maxScore := len(questions)
	percent := float64(score) / float64(maxScore) * 100
	return Verdict{
		MaxScore:       maxScore,
		CandidateScore: score,
		PercentScore:   percent,
		Passed:         percent >= passThreshold,
		Answers:        records,
	}, nil
}
