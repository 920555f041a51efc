package progress

import (
	"context"
	"errors"
	"time"

	"animal-quiz/internal/quiz"
)

// Durable storage keys. The KV namespace is shared per storage file; the store
// is the sole writer for these keys.
const (
	progressKey    = "weird-animal-quiz-progress"
	preferencesKey = "weird-animal-quiz-preferences"
	lastSaveKey    = "weird-animal-quiz-last-save"

	schemaVersion = "1"
)

var (
	// ErrInvalidState means the quiz state failed shape validation and nothing
	// was written.
	ErrInvalidState = errors.New("quiz state failed validation")
	// ErrStorageUnavailable covers an inaccessible backend; quota exhaustion is
	// treated identically. Callers surface a non-blocking notice, nothing more.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// KV is the durable key-value backend the store writes its safe projection to.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	UsedBytes(ctx context.Context) (int64, error)
}

// SafeProgress is the durable projection of quiz state. Sensitive content
// (questions, answers, end time) has no field here; the type boundary is what
// keeps it out of storage, not a runtime filter.
type SafeProgress struct {
	Version              string    `json:"version"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	Difficulty           string    `json:"difficulty"`
	StartTime            time.Time `json:"start_time"`
	HintsUsed            []string  `json:"hints_used"`
	TotalQuestions       int       `json:"total_questions"`
	IsComplete           bool      `json:"is_complete"`
	LastSaveTime         time.Time `json:"last_save_time"`
}

// sensitiveSlot holds the memory-only remainder of an attempt. It lives for
// the store's lifetime and is wiped on background, terminate and clear, so a
// process restart recovers position but never answer history.
type sensitiveSlot struct {
	sessionID   string
	questions   []quiz.Question
	userAnswers []quiz.UserAnswer
	quizEndTime time.Time
}

// Resume is what LoadProgress reconstructs. The sensitive fields are populated
// only when the in-memory slot survived for the current session.
type Resume struct {
	CurrentQuestionIndex int
	Difficulty           quiz.Difficulty
	StartTime            time.Time
	HintsUsed            []string
	TotalQuestions       int
	IsComplete           bool
	LastSaveTime         time.Time

	Questions   []quiz.Question
	UserAnswers []quiz.UserAnswer
	QuizEndTime time.Time
}

// HasSensitiveData reports whether the attempt can be fully rehydrated, or
// only its position restored.
func (r *Resume) HasSensitiveData() bool {
	return len(r.Questions) > 0
}

// FontSize values accepted in preferences.
const (
	FontSizeNormal = "normal"
	FontSizeLarge  = "large"
)

// Preferences are fully non-sensitive display settings kept under their own
// durable key.
type Preferences struct {
	ReducedMotion bool   `json:"reduced_motion"`
	HighContrast  bool   `json:"high_contrast"`
	FontSize      string `json:"font_size"`
	SoundEnabled  bool   `json:"sound_enabled"`
}

// DefaultPreferences stands in for the host environment's own defaults (a
// browser would consult the reduced-motion media query here).
func DefaultPreferences() Preferences {
	return Preferences{
		ReducedMotion: false,
		HighContrast:  false,
		FontSize:      FontSizeNormal,
		SoundEnabled:  true,
	}
}

// StorageInfo is a usage estimate for the durable backend.
type StorageInfo struct {
	UsedBytes  int64
	LimitBytes int64
	Percentage float64
}
