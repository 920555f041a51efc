package quiz

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSelectAttemptQuestionsStratification(t *testing.T) {
	bank, err := NewBank(bankQuestions())
	if err != nil {
		t.Fatalf("NewBank failed: %v", err)
	}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		selected, err := SelectAttemptQuestions(bank, rng)
		if err != nil {
			t.Fatalf("seed %d: SelectAttemptQuestions failed: %v", seed, err)
		}
		if len(selected) != AttemptSize {
			t.Fatalf("seed %d: expected %d questions, got %d", seed, AttemptSize, len(selected))
		}

		counts := make(map[Difficulty]int)
		seen := make(map[string]struct{})
		for _, question := range selected {
			counts[question.Difficulty]++
			if _, dup := seen[question.QuestionID]; dup {
				t.Fatalf("seed %d: question %q selected twice", seed, question.QuestionID)
			}
			seen[question.QuestionID] = struct{}{}
		}
		for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
			if counts[difficulty] != 3 {
				t.Fatalf("seed %d: expected 3 %s questions, got %d", seed, difficulty, counts[difficulty])
			}
		}
	}
}

// Ordering should usually differ between calls. This is a UX property, not a
// guarantee, so the test only requires one difference across several pairs.
func TestSelectAttemptQuestionsOrderingVaries(t *testing.T) {
	bank, err := NewBank(bankQuestions())
	if err != nil {
		t.Fatalf("NewBank failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	differed := false
	for round := 0; round < 10 && !differed; round++ {
		first, err := SelectAttemptQuestions(bank, rng)
		if err != nil {
			t.Fatalf("SelectAttemptQuestions failed: %v", err)
		}
		second, err := SelectAttemptQuestions(bank, rng)
		if err != nil {
			t.Fatalf("SelectAttemptQuestions failed: %v", err)
		}
		for idx := range first {
			if first[idx].QuestionID != second[idx].QuestionID {
				differed = true
				break
			}
		}
	}
	if !differed {
		t.Fatalf("10 consecutive selections were identical; shuffle looks broken")
	}
}

func TestSelectAttemptQuestionsShortBucket(t *testing.T) {
	// Bypass NewBank validation to hit the selector's own guard.
	bank := &Bank{
		byDifficulty: map[Difficulty][]Question{
			DifficultyEasy:   {validTestQuestion("e1", DifficultyEasy), validTestQuestion("e2", DifficultyEasy)},
			DifficultyMedium: {validTestQuestion("m1", DifficultyMedium), validTestQuestion("m2", DifficultyMedium), validTestQuestion("m3", DifficultyMedium)},
			DifficultyHard:   {validTestQuestion("h1", DifficultyHard), validTestQuestion("h2", DifficultyHard), validTestQuestion("h3", DifficultyHard)},
		},
	}

	_, err := SelectAttemptQuestions(bank, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrContentIntegrity) {
		t.Fatalf("expected ErrContentIntegrity, got %v", err)
	}
}
