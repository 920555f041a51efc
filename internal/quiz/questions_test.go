package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validTestQuestion(id string, difficulty Difficulty) Question {
	return Question{
		QuestionID: id,
		Difficulty: difficulty,
		Text:       "Which animal is this question about?",
		Emojis:     []string{"🐙", "🦎"},
		Answers: []Answer{
			{AnswerID: "right", Text: "The right one", IsCorrect: true},
			{AnswerID: "wrong-1", Text: "A wrong one", IsCorrect: false},
			{AnswerID: "wrong-2", Text: "Another wrong one", IsCorrect: false},
			{AnswerID: "wrong-3", Text: "Yet another wrong one", IsCorrect: false},
		},
		Explanation: "Because of biology.",
		FunFact:     "Animals are neat.",
		Category:    "testing",
	}
}

// bankQuestions returns enough valid content for stratified selection:
// four questions per difficulty.
func bankQuestions() []Question {
	var questions []Question
	for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		for idx := 0; idx < 4; idx++ {
			questions = append(questions, validTestQuestion(fmt.Sprintf("%s-%d", difficulty, idx), difficulty))
		}
	}
	return questions
}

func TestValidateQuestionAcceptsValidContent(t *testing.T) {
	problems := ValidateQuestion(validTestQuestion("ok-question", DifficultyEasy))
	if len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateQuestionRejectsDefects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Question)
		want   string
	}{
		{
			name:   "bad id characters",
			mutate: func(q *Question) { q.QuestionID = "<script>" },
			want:   "disallowed characters",
		},
		{
			name:   "id too long",
			mutate: func(q *Question) { q.QuestionID = strings.Repeat("a", 51) },
			want:   "disallowed characters",
		},
		{
			name:   "unknown difficulty",
			mutate: func(q *Question) { q.Difficulty = "impossible" },
			want:   "not one of easy/medium/hard",
		},
		{
			name:   "empty text",
			mutate: func(q *Question) { q.Text = "  " },
			want:   "question text is empty",
		},
		{
			name:   "too few emojis",
			mutate: func(q *Question) { q.Emojis = []string{"🐙"} },
			want:   "at least 2 emojis",
		},
		{
			name:   "non-emoji emoji",
			mutate: func(q *Question) { q.Emojis = []string{"🐙", "abc"} },
			want:   "not an emoji",
		},
		{
			name:   "three answers",
			mutate: func(q *Question) { q.Answers = q.Answers[:3] },
			want:   "exactly 4 answers",
		},
		{
			name:   "two correct answers",
			mutate: func(q *Question) { q.Answers[1].IsCorrect = true },
			want:   "exactly one correct answer",
		},
		{
			name:   "no correct answer",
			mutate: func(q *Question) { q.Answers[0].IsCorrect = false },
			want:   "exactly one correct answer",
		},
		{
			name:   "explanation too long",
			mutate: func(q *Question) { q.Explanation = strings.Repeat("x", 1001) },
			want:   "explanation exceeds 1000",
		},
		{
			name:   "empty category",
			mutate: func(q *Question) { q.Category = "" },
			want:   "category is empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			question := validTestQuestion("mutated", DifficultyMedium)
			tc.mutate(&question)

			problems := ValidateQuestion(question)
			if len(problems) == 0 {
				t.Fatalf("expected validation problems, got none")
			}
			found := false
			for _, problem := range problems {
				if strings.Contains(problem, tc.want) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected a problem containing %q, got %v", tc.want, problems)
			}
		})
	}
}

func TestNewBankRejectsShortDifficultyBucket(t *testing.T) {
	questions := bankQuestions()
	// Keep only two easy questions.
	var trimmed []Question
	easySeen := 0
	for _, question := range questions {
		if question.Difficulty == DifficultyEasy {
			easySeen++
			if easySeen > 2 {
				continue
			}
		}
		trimmed = append(trimmed, question)
	}

	_, err := NewBank(trimmed)
	if !errors.Is(err, ErrContentIntegrity) {
		t.Fatalf("expected ErrContentIntegrity, got %v", err)
	}
	if !strings.Contains(err.Error(), "difficulty easy has 2 questions") {
		t.Fatalf("error should name the short bucket: %v", err)
	}
}

func TestNewBankRejectsDuplicateIDs(t *testing.T) {
	questions := bankQuestions()
	questions[1].QuestionID = questions[0].QuestionID

	_, err := NewBank(questions)
	if !errors.Is(err, ErrContentIntegrity) {
		t.Fatalf("expected ErrContentIntegrity, got %v", err)
	}
}

func TestBankAccessors(t *testing.T) {
	bank, err := NewBank(bankQuestions())
	if err != nil {
		t.Fatalf("NewBank failed: %v", err)
	}

	if bank.Len() != 12 {
		t.Fatalf("expected 12 questions, got %d", bank.Len())
	}

	counts := bank.Counts()
	for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if counts[difficulty] != 4 {
			t.Fatalf("expected 4 %s questions, got %d", difficulty, counts[difficulty])
		}
		if got := len(bank.ByDifficulty(difficulty)); got != 4 {
			t.Fatalf("ByDifficulty(%s) returned %d questions", difficulty, got)
		}
	}

	// Accessors must hand out copies, not the bank's own slices.
	all := bank.All()
	all[0].QuestionID = "tampered"
	if bank.All()[0].QuestionID == "tampered" {
		t.Fatalf("All() leaked internal state")
	}
}

func TestLoadBankFromFile(t *testing.T) {
	data, err := json.Marshal(bankQuestions())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank failed: %v", err)
	}
	if bank.Len() != 12 {
		t.Fatalf("expected 12 questions, got %d", bank.Len())
	}
}

func TestLoadBankRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := LoadBank(path); err == nil {
		t.Fatalf("expected error for non-JSON content")
	}
}

func TestCorrectAnswerID(t *testing.T) {
	question := validTestQuestion("q", DifficultyEasy)
	if got := question.CorrectAnswerID(); got != "right" {
		t.Fatalf("expected %q, got %q", "right", got)
	}

	question.Answers = nil
	if got := question.CorrectAnswerID(); got != "" {
		t.Fatalf("expected empty id for malformed question, got %q", got)
	}
}
