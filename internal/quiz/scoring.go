package quiz

import "math"

// ScoreReport is derived on demand from questions plus recorded answers; it is
// never stored in State.
type ScoreReport struct {
	Score        int
	MaxScore     int
	CorrectCount int
	HintPenalty  int
	Percentage   int
}

// ScoreAttempt computes the attempt score: each correct answer earns its
// question's difficulty points, every hint costs a flat point regardless of
// difficulty, and the percentage is taken against the maximum over all
// questions whether answered or not.
func ScoreAttempt(questions []Question, answers []UserAnswer, hintsUsed map[string]struct{}) ScoreReport {
	correctByID := make(map[string]string, len(questions))
	pointsByID := make(map[string]int, len(questions))

	report := ScoreReport{}
	for _, question := range questions {
		correctByID[question.QuestionID] = question.CorrectAnswerID()
		pointsByID[question.QuestionID] = question.Difficulty.Points()
		report.MaxScore += question.Difficulty.Points()
	}

	for _, answer := range answers {
		if answer.AnswerID == "" {
			continue // timeout, counts as incorrect
		}
		if answer.AnswerID == correctByID[answer.QuestionID] {
			report.Score += pointsByID[answer.QuestionID]
			report.CorrectCount++
		}
	}

	report.HintPenalty = len(hintsUsed)

	if report.MaxScore > 0 {
		report.Percentage = int(math.Round(100 * float64(report.Score) / float64(report.MaxScore)))
	}
	return report
}
