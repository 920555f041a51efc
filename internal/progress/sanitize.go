package progress

import (
	"encoding/json"
	"sort"

	"animal-quiz/internal/quiz"
)

// sanitizeHintIDs filters hint ids through the question-id format check,
// silently dropping malformed entries instead of failing the whole save. The
// result is sorted so repeated saves of the same state are byte-identical.
func sanitizeHintIDs(hintsUsed map[string]struct{}) []string {
	ids := make([]string, 0, len(hintsUsed))
	for id := range hintsUsed {
		if quiz.ValidQuestionID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func sanitizeHintIDList(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if quiz.ValidQuestionID(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// validateState checks the quiz state shape before anything is written.
// Violations here mean the caller handed over a corrupted state, not that
// storage failed.
func validateState(state quiz.State) bool {
	if len(state.Questions) == 0 {
		return false
	}
	if state.CurrentQuestionIndex > len(state.Questions) {
		return false
	}
	// Answer count matches the index, allowing the post-answer window where
	// the answer is recorded but the index has not advanced yet.
	clamped := state.CurrentQuestionIndex
	if clamped < 0 {
		clamped = 0
	}
	if len(state.UserAnswers) != clamped && len(state.UserAnswers) != clamped+1 {
		return false
	}
	if state.IsComplete && state.CurrentQuestionIndex != len(state.Questions) {
		return false
	}
	for idx, answer := range state.UserAnswers {
		if idx >= len(state.Questions) || answer.QuestionID != state.Questions[idx].QuestionID {
			return false
		}
	}
	return true
}

// validSafeProgress decides whether a durable payload can be trusted. Anything
// failing here is deleted, never partially used.
func validSafeProgress(p SafeProgress) bool {
	if p.Version != schemaVersion {
		return false
	}
	if p.TotalQuestions <= 0 {
		return false
	}
	if p.CurrentQuestionIndex < 0 || p.CurrentQuestionIndex > p.TotalQuestions {
		return false
	}
	if p.IsComplete && p.CurrentQuestionIndex != p.TotalQuestions {
		return false
	}
	if p.StartTime.IsZero() {
		return false
	}
	for _, id := range p.HintsUsed {
		if !quiz.ValidQuestionID(id) {
			return false
		}
	}
	return true
}

// sanitizePreferences coerces a raw JSON payload field by field, falling back
// to the given defaults for anything absent or of the wrong type. It never
// fails.
func sanitizePreferences(raw []byte, defaults Preferences) Preferences {
	prefs := defaults

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return defaults
	}

	if b, ok := decodeBool(fields["reduced_motion"]); ok {
		prefs.ReducedMotion = b
	}
	if b, ok := decodeBool(fields["high_contrast"]); ok {
		prefs.HighContrast = b
	}
	if b, ok := decodeBool(fields["sound_enabled"]); ok {
		prefs.SoundEnabled = b
	}
	if s, ok := decodeString(fields["font_size"]); ok && (s == FontSizeNormal || s == FontSizeLarge) {
		prefs.FontSize = s
	}

	return prefs
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if raw == nil {
		return false, false
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, false
	}
	return value, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}
