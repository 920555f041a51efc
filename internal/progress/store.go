package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"animal-quiz/internal/quiz"
)

const probeKey = "weird-animal-quiz-probe"

// DefaultStorageLimitBytes mirrors the usual per-origin localStorage budget.
const DefaultStorageLimitBytes = 5 << 20

// saveMarker is the structural fingerprint used for dirty-checking. Comparing
// these cheap fields is enough: sensitive content never changes without one of
// them moving too.
type saveMarker struct {
	index       int
	answerCount int
	hintCount   int
	isComplete  bool
}

func markerFor(state quiz.State) saveMarker {
	return saveMarker{
		index:       state.CurrentQuestionIndex,
		answerCount: len(state.UserAnswers),
		hintCount:   len(state.HintsUsed),
		isComplete:  state.IsComplete,
	}
}

// Options tune a Store; zero values fall back to sensible defaults.
type Options struct {
	LimitBytes int64
	Defaults   Preferences
	Clock      func() time.Time
}

// Store bridges quiz state to durable key-value storage, split across the
// sensitivity boundary: only SafeProgress ever reaches the backend, while
// questions and answer history stay in the in-memory slot for the lifetime of
// the session.
//
// Every operation degrades instead of failing hard: validation problems and
// backend errors come back as sentinel errors or nil results, logged, never a
// panic.
type Store struct {
	kv       KV
	log      *zap.Logger
	clock    func() time.Time
	limit    int64
	defaults Preferences

	mu        sync.Mutex
	sessionID string
	slot      *sensitiveSlot
	lastSaved saveMarker
	hasSaved  bool
	latest    quiz.State
	hasLatest bool
}

func New(kv KV, log *zap.Logger, opts Options) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	limit := opts.LimitBytes
	if limit <= 0 {
		limit = DefaultStorageLimitBytes
	}
	defaults := opts.Defaults
	if defaults == (Preferences{}) {
		defaults = DefaultPreferences()
	}

	return &Store{
		kv:        kv,
		log:       log,
		clock:     clock,
		limit:     limit,
		defaults:  defaults,
		sessionID: uuid.NewString(),
	}
}

// SaveProgress validates the state, writes the safe projection durably and
// refreshes the in-memory sensitive slot. Malformed hint ids are dropped
// rather than failing the save; a malformed state writes nothing.
func (s *Store) SaveProgress(ctx context.Context, state quiz.State) error {
	if !validateState(state) {
		s.log.Warn("refusing to save invalid quiz state",
			zap.Int("index", state.CurrentQuestionIndex),
			zap.Int("answers", len(state.UserAnswers)),
			zap.Int("questions", len(state.Questions)))
		return ErrInvalidState
	}

	index := state.CurrentQuestionIndex
	if index < 0 {
		index = 0
	}
	difficulty := ""
	if question, ok := state.CurrentQuestion(); ok {
		difficulty = string(question.Difficulty)
	}

	now := s.clock().UTC()
	safe := SafeProgress{
		Version:              schemaVersion,
		CurrentQuestionIndex: index,
		Difficulty:           difficulty,
		StartTime:            state.QuizStartTime,
		HintsUsed:            sanitizeHintIDs(state.HintsUsed),
		TotalQuestions:       len(state.Questions),
		IsComplete:           state.IsComplete,
		LastSaveTime:         now,
	}

	payload, err := json.Marshal(safe)
	if err != nil {
		s.log.Error("marshaling safe progress", zap.Error(err))
		return ErrInvalidState
	}

	if err := s.kv.Set(ctx, progressKey, string(payload)); err != nil {
		s.log.Warn("progress save failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	// Heartbeat is best effort; the projection is already durable.
	if err := s.kv.Set(ctx, lastSaveKey, now.Format(time.RFC3339)); err != nil {
		s.log.Debug("heartbeat write failed", zap.Error(err))
	}

	s.mu.Lock()
	s.slot = &sensitiveSlot{
		sessionID:   s.sessionID,
		questions:   append([]quiz.Question(nil), state.Questions...),
		userAnswers: append([]quiz.UserAnswer(nil), state.UserAnswers...),
		quizEndTime: state.QuizEndTime,
	}
	s.lastSaved = markerFor(state)
	s.hasSaved = true
	s.mu.Unlock()

	return nil
}

// LoadProgress reads the durable key and reconstructs a partial attempt.
// A missing key yields nil; a corrupted or version-mismatched payload is
// deleted and yields nil, so poisoned data cannot survive a load. Sensitive
// content is attached only when the current session's slot is still alive.
func (s *Store) LoadProgress(ctx context.Context) *Resume {
	value, ok, err := s.kv.Get(ctx, progressKey)
	if err != nil {
		s.log.Warn("progress load failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var safe SafeProgress
	if err := json.Unmarshal([]byte(value), &safe); err != nil || !validSafeProgress(safe) {
		s.log.Warn("removing corrupted progress entry", zap.Error(err))
		if deleteErr := s.kv.Delete(ctx, progressKey); deleteErr != nil {
			s.log.Warn("failed to remove corrupted progress entry", zap.Error(deleteErr))
		}
		return nil
	}

	resume := &Resume{
		CurrentQuestionIndex: safe.CurrentQuestionIndex,
		Difficulty:           quiz.Difficulty(safe.Difficulty),
		StartTime:            safe.StartTime,
		HintsUsed:            sanitizeHintIDList(safe.HintsUsed),
		TotalQuestions:       safe.TotalQuestions,
		IsComplete:           safe.IsComplete,
		LastSaveTime:         safe.LastSaveTime,
	}

	s.mu.Lock()
	if s.slot != nil && s.slot.sessionID == s.sessionID {
		resume.Questions = append([]quiz.Question(nil), s.slot.questions...)
		resume.UserAnswers = append([]quiz.UserAnswer(nil), s.slot.userAnswers...)
		resume.QuizEndTime = s.slot.quizEndTime
	}
	s.mu.Unlock()

	return resume
}

// ClearProgress removes the durable keys and the sensitive slot. Backend
// failures are logged and swallowed.
func (s *Store) ClearProgress(ctx context.Context) {
	for _, key := range []string{progressKey, lastSaveKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("clearing progress key failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.slot = nil
	s.lastSaved = saveMarker{}
	s.hasSaved = false
	s.mu.Unlock()
}

// SavePreferences writes display preferences under their own key, coercing the
// font size to a known value first.
func (s *Store) SavePreferences(ctx context.Context, prefs Preferences) error {
	if prefs.FontSize != FontSizeNormal && prefs.FontSize != FontSizeLarge {
		prefs.FontSize = s.defaults.FontSize
	}

	payload, err := json.Marshal(prefs)
	if err != nil {
		s.log.Error("marshaling preferences", zap.Error(err))
		return ErrInvalidState
	}
	if err := s.kv.Set(ctx, preferencesKey, string(payload)); err != nil {
		s.log.Warn("preferences save failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// LoadPreferences never fails: each field is coerced to its expected type and
// anything absent or corrupted falls back to the configured defaults.
func (s *Store) LoadPreferences(ctx context.Context) Preferences {
	value, ok, err := s.kv.Get(ctx, preferencesKey)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("preferences load failed", zap.Error(err))
		}
		return s.defaults
	}
	return sanitizePreferences([]byte(value), s.defaults)
}

// Available runs a write probe against the backend. Quota exhaustion and a
// missing backend look the same from here, which matches how callers react.
func (s *Store) Available(ctx context.Context) bool {
	if err := s.kv.Set(ctx, probeKey, "1"); err != nil {
		return false
	}
	if err := s.kv.Delete(ctx, probeKey); err != nil {
		s.log.Debug("probe cleanup failed", zap.Error(err))
	}
	return true
}

// Info estimates backend usage against the configured limit.
func (s *Store) Info(ctx context.Context) StorageInfo {
	used, err := s.kv.UsedBytes(ctx)
	if err != nil {
		s.log.Warn("storage usage query failed", zap.Error(err))
		used = 0
	}
	info := StorageInfo{UsedBytes: used, LimitBytes: s.limit}
	if s.limit > 0 {
		info.Percentage = 100 * float64(used) / float64(s.limit)
	}
	return info
}

// TrackEngine subscribes to engine changes: every recorded answer and the
// completion transition trigger an immediate save, and the latest state is
// retained for the auto-save ticker and lifecycle hooks.
func (s *Store) TrackEngine(ctx context.Context, engine *quiz.Engine) {
	engine.OnChange(func(state quiz.State) {
		s.mu.Lock()
		s.latest = state
		s.hasLatest = true
		answered := len(state.UserAnswers) > s.lastSaved.answerCount
		completed := state.IsComplete && !s.lastSaved.isComplete
		s.mu.Unlock()

		if answered || completed {
			_ = s.SaveProgress(ctx, state)
		}
	})
}

// RunAutoSave persists on a fixed cadence while an attempt is in progress and
// the trackable fields changed since the last save. Blocks until ctx is done;
// run it on its own goroutine.
func (s *Store) RunAutoSave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			state := s.latest
			due := s.hasLatest && state.Phase() == quiz.PhaseInProgress && s.dirtyLocked(state)
			s.mu.Unlock()

			if due {
				_ = s.SaveProgress(ctx, state)
			}
		}
	}
}

func (s *Store) dirtyLocked(state quiz.State) bool {
	return !s.hasSaved || markerFor(state) != s.lastSaved
}

// OnBackground is the tab-hidden hook: save opportunistically, then drop the
// sensitive slot so hidden tabs hold no question or answer content.
func (s *Store) OnBackground(ctx context.Context) {
	s.saveLatest(ctx)
	s.mu.Lock()
	s.slot = nil
	s.mu.Unlock()
}

// OnForeground re-probes the backend after the host becomes visible again.
func (s *Store) OnForeground(ctx context.Context) bool {
	return s.Available(ctx)
}

// OnTerminate is the last-chance hook before the host goes away.
func (s *Store) OnTerminate(ctx context.Context) {
	s.saveLatest(ctx)
	s.mu.Lock()
	s.slot = nil
	s.mu.Unlock()
}

func (s *Store) saveLatest(ctx context.Context) {
	s.mu.Lock()
	state := s.latest
	has := s.hasLatest && state.Phase() != quiz.PhaseNotStarted
	s.mu.Unlock()

	if has {
		_ = s.SaveProgress(ctx, state)
	}
}
