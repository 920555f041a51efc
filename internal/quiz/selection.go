package quiz

import (
	"fmt"
	"math/rand"
)

const (
	// AttemptSize is the fixed question count per attempt.
	AttemptSize            = 9
	questionsPerDifficulty = 3
)

// SelectAttemptQuestions builds the question sequence for a new attempt:
// shuffle each difficulty bucket independently, take the first three of each,
// then shuffle the combined nine so difficulty is not predictable from
// position. A bucket with fewer than three questions is a content-integrity
// failure; the caller never gets a short attempt.
func SelectAttemptQuestions(bank *Bank, rng *rand.Rand) ([]Question, error) {
	selected := make([]Question, 0, AttemptSize)

	for _, difficulty := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		bucket := bank.ByDifficulty(difficulty)
		if len(bucket) < questionsPerDifficulty {
			return nil, fmt.Errorf("%w: difficulty %s has only %d questions", ErrContentIntegrity, difficulty, len(bucket))
		}
		fisherYates(bucket, rng)
		selected = append(selected, bucket[:questionsPerDifficulty]...)
	}

	fisherYates(selected, rng)
	return selected, nil
}

func fisherYates(questions []Question, rng *rand.Rand) {
	for i := len(questions) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}
