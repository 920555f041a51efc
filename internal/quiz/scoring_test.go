package quiz

import "testing"

// The canonical scoring scenario: all easy correct, all medium wrong, all hard
// correct, one hint used. 3×1 + 0 + 3×3 = 12 of 18, 67%.
func TestScoreAttemptScenario(t *testing.T) {
	questions := attemptQuestions()

	var answers []UserAnswer
	for _, question := range questions {
		answerID := question.CorrectAnswerID()
		if question.Difficulty == DifficultyMedium {
			answerID = question.Answers[1].AnswerID // known wrong
		}
		answers = append(answers, UserAnswer{
			QuestionID: question.QuestionID,
			AnswerID:   answerID,
			TimeTaken:  5,
		})
	}
	hints := map[string]struct{}{questions[0].QuestionID: {}}

	report := ScoreAttempt(questions, answers, hints)
	if report.Score != 12 {
		t.Fatalf("expected score 12, got %d", report.Score)
	}
	if report.MaxScore != 18 {
		t.Fatalf("expected max score 18, got %d", report.MaxScore)
	}
	if report.CorrectCount != 6 {
		t.Fatalf("expected 6 correct, got %d", report.CorrectCount)
	}
	if report.HintPenalty != 1 {
		t.Fatalf("expected hint penalty 1, got %d", report.HintPenalty)
	}
	if report.Percentage != 67 {
		t.Fatalf("expected 67%%, got %d%%", report.Percentage)
	}
}

func TestScoreAttemptTimeoutCountsIncorrect(t *testing.T) {
	questions := attemptQuestions()

	answers := []UserAnswer{{QuestionID: questions[0].QuestionID, AnswerID: "", TimeTaken: 30}}
	report := ScoreAttempt(questions, answers, nil)
	if report.Score != 0 || report.CorrectCount != 0 {
		t.Fatalf("timeout must count as incorrect, got %+v", report)
	}
	if report.MaxScore != 18 {
		t.Fatalf("max score counts all questions regardless of answers, got %d", report.MaxScore)
	}
}

func TestScoreAttemptEmpty(t *testing.T) {
	report := ScoreAttempt(nil, nil, nil)
	if report.Percentage != 0 || report.MaxScore != 0 {
		t.Fatalf("empty attempt should score zero, got %+v", report)
	}
}

func TestDifficultyPoints(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		points     int
	}{
		{DifficultyEasy, 1},
		{DifficultyMedium, 2},
		{DifficultyHard, 3},
		{Difficulty("bogus"), 0},
	}
	for _, tc := range tests {
		if got := tc.difficulty.Points(); got != tc.points {
			t.Fatalf("%s: expected %d points, got %d", tc.difficulty, tc.points, got)
		}
	}
}
