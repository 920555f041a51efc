package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrContentIntegrity marks static question content that fails validation.
// It is a deployment defect: the bank refuses to load rather than masking it.
var ErrContentIntegrity = errors.New("question content failed integrity checks")

// Bank is the static, read-only question collection an attempt draws from.
type Bank struct {
	questions    []Question
	byDifficulty map[Difficulty][]Question
}

// NewBank validates every question and the per-difficulty minimums needed for
// stratified selection. Any violation fails construction.
func NewBank(questions []Question) (*Bank, error) {
	var problems []string
	seen := make(map[string]struct{}, len(questions))

	for _, question := range questions {
		for _, problem := range ValidateQuestion(question) {
			problems = append(problems, fmt.Sprintf("question %q: %s", question.QuestionID, problem))
		}
		if _, dup := seen[question.QuestionID]; dup {
			problems = append(problems, fmt.Sprintf("question id %q is duplicated", question.QuestionID))
		}
		seen[question.QuestionID] = struct{}{}
	}

	byDifficulty := make(map[Difficulty][]Question)
	for _, question := range questions {
		byDifficulty[question.Difficulty] = append(byDifficulty[question.Difficulty], question)
	}
	for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if count := len(byDifficulty[difficulty]); count < questionsPerDifficulty {
			problems = append(problems, fmt.Sprintf("difficulty %s has %d questions, needs at least %d", difficulty, count, questionsPerDifficulty))
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w:\n%s", ErrContentIntegrity, strings.Join(problems, "\n"))
	}

	bank := &Bank{
		questions:    make([]Question, len(questions)),
		byDifficulty: byDifficulty,
	}
	copy(bank.questions, questions)
	return bank, nil
}

// LoadBank reads and validates question content from a JSON file.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question content: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parsing question content: %w", err)
	}

	return NewBank(questions)
}

func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *Bank) ByDifficulty(d Difficulty) []Question {
	src := b.byDifficulty[d]
	out := make([]Question, len(src))
	copy(out, src)
	return out
}

func (b *Bank) Counts() map[Difficulty]int {
	counts := make(map[Difficulty]int, len(b.byDifficulty))
	for difficulty, questions := range b.byDifficulty {
		counts[difficulty] = len(questions)
	}
	return counts
}

func (b *Bank) Len() int {
	return len(b.questions)
}
