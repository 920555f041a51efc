package quiz

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Points returns the score value of a question at this difficulty.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Answer struct {
	AnswerID  string `json:"answer_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	QuestionID  string     `json:"question_id"`
	Difficulty  Difficulty `json:"difficulty"`
	Text        string     `json:"text"`
	Emojis      []string   `json:"emojis"`
	Answers     []Answer   `json:"answers"`
	Explanation string     `json:"explanation"`
	FunFact     string     `json:"fun_fact"`
	Category    string     `json:"category"`
}

// CorrectAnswerID returns the id of the single correct answer, or "" if the
// question is malformed.
func (q Question) CorrectAnswerID() string {
	for _, answer := range q.Answers {
		if answer.IsCorrect {
			return answer.AnswerID
		}
	}
	return ""
}

const (
	maxQuestionIDLen   = 50
	maxAnswerIDLen     = 20
	maxQuestionLen     = 500
	maxAnswerTextLen   = 200
	maxExplanationLen  = 1000
	maxFunFactLen      = 500
	maxCategoryLen     = 50
	answersPerQuestion = 4
	minEmojis          = 2
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidQuestionID reports whether id is usable as a question identifier.
// The same format gates hint ids before they reach durable storage.
func ValidQuestionID(id string) bool {
	return id != "" && len(id) <= maxQuestionIDLen && idPattern.MatchString(id)
}

func validAnswerID(id string) bool {
	return id != "" && len(id) <= maxAnswerIDLen && idPattern.MatchString(id)
}

// ValidateQuestion checks a question against the content contract and returns
// every violation found, so content defects surface all at once instead of one
// per run.
func ValidateQuestion(q Question) []string {
	var problems []string

	if !ValidQuestionID(q.QuestionID) {
		problems = append(problems, fmt.Sprintf("question id %q is empty, too long, or contains disallowed characters", q.QuestionID))
	}
	if !q.Difficulty.Valid() {
		problems = append(problems, fmt.Sprintf("difficulty %q is not one of easy/medium/hard", q.Difficulty))
	}
	if strings.TrimSpace(q.Text) == "" {
		problems = append(problems, "question text is empty")
	} else if utf8.RuneCountInString(q.Text) > maxQuestionLen {
		problems = append(problems, fmt.Sprintf("question text exceeds %d characters", maxQuestionLen))
	}

	if len(q.Emojis) < minEmojis {
		problems = append(problems, fmt.Sprintf("question needs at least %d emojis, has %d", minEmojis, len(q.Emojis)))
	}
	for idx, emoji := range q.Emojis {
		if !looksLikeEmoji(emoji) {
			problems = append(problems, fmt.Sprintf("emoji %d (%q) is not an emoji sequence", idx, emoji))
		}
	}

	if len(q.Answers) != answersPerQuestion {
		problems = append(problems, fmt.Sprintf("question must have exactly %d answers, has %d", answersPerQuestion, len(q.Answers)))
	}
	correctCount := 0
	for idx, answer := range q.Answers {
		if !validAnswerID(answer.AnswerID) {
			problems = append(problems, fmt.Sprintf("answer %d id %q is invalid", idx, answer.AnswerID))
		}
		if strings.TrimSpace(answer.Text) == "" {
			problems = append(problems, fmt.Sprintf("answer %d text is empty", idx))
		} else if utf8.RuneCountInString(answer.Text) > maxAnswerTextLen {
			problems = append(problems, fmt.Sprintf("answer %d text exceeds %d characters", idx, maxAnswerTextLen))
		}
		if answer.IsCorrect {
			correctCount++
		}
	}
	if len(q.Answers) == answersPerQuestion && correctCount != 1 {
		problems = append(problems, fmt.Sprintf("question must have exactly one correct answer, has %d", correctCount))
	}

	problems = append(problems, validateEducationalText("explanation", q.Explanation, maxExplanationLen)...)
	problems = append(problems, validateEducationalText("fun fact", q.FunFact, maxFunFactLen)...)
	problems = append(problems, validateEducationalText("category", q.Category, maxCategoryLen)...)

	return problems
}

func validateEducationalText(field, value string, limit int) []string {
	if strings.TrimSpace(value) == "" {
		return []string{field + " is empty"}
	}
	if utf8.RuneCountInString(value) > limit {
		return []string{fmt.Sprintf("%s exceeds %d characters", field, limit)}
	}
	return nil
}

// looksLikeEmoji accepts a short rune sequence whose base runes sit in the
// Unicode emoji blocks. Joiners and variation selectors are tolerated so
// composed emoji pass.
func looksLikeEmoji(s string) bool {
	if s == "" {
		return false
	}
	sawEmojiRune := false
	for _, r := range s {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, animals, symbols
			sawEmojiRune = true
		case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
			sawEmojiRune = true
		case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
			sawEmojiRune = true
		case r == 0x200D || r == 0xFE0F || r == 0xFE0E: // ZWJ, variation selectors
		default:
			return false
		}
	}
	return sawEmojiRune
}
