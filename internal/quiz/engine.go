package quiz

import (
	"sync"
	"time"
)

// UserAnswer records the outcome of one question within an attempt.
type UserAnswer struct {
	QuestionID string
	// AnswerID is "" when the question timed out unanswered.
	AnswerID  string
	HintUsed  bool
	TimeTaken float64
}

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseComplete
)

// State is the full in-memory representation of an active attempt. It is only
// ever produced by Reduce; callers treat it as immutable.
//
// Invariants maintained by Reduce:
//   - len(UserAnswers) == CurrentQuestionIndex, except between an answer and
//     the following NextQuestion, where it is CurrentQuestionIndex+1.
//   - CurrentQuestionIndex never decreases.
//   - IsComplete implies CurrentQuestionIndex == len(Questions).
//   - UserAnswers[i].QuestionID == Questions[i].QuestionID.
//   - At most one answer and one hint per question.
type State struct {
	Questions            []Question
	CurrentQuestionIndex int
	UserAnswers          []UserAnswer
	HintsUsed            map[string]struct{}
	IsComplete           bool
	Paused               bool
	QuizStartTime        time.Time
	QuizEndTime          time.Time
}

func (s State) Phase() Phase {
	switch {
	case len(s.Questions) == 0:
		return PhaseNotStarted
	case s.IsComplete:
		return PhaseComplete
	default:
		return PhaseInProgress
	}
}

// CurrentQuestion returns the question awaiting an answer or feedback, and
// false once the attempt is complete or not started.
func (s State) CurrentQuestion() (Question, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// currentAnswered reports whether the question at CurrentQuestionIndex already
// has a recorded answer (the mid-transition window before NextQuestion).
func (s State) currentAnswered() bool {
	return len(s.UserAnswers) > s.CurrentQuestionIndex
}

func (s State) HintUsedFor(questionID string) bool {
	_, ok := s.HintsUsed[questionID]
	return ok
}

// clone returns a deep-enough copy so a reduced state never aliases the slices
// and maps of its predecessor.
func (s State) clone() State {
	out := s
	out.Questions = append([]Question(nil), s.Questions...)
	out.UserAnswers = append([]UserAnswer(nil), s.UserAnswers...)
	out.HintsUsed = make(map[string]struct{}, len(s.HintsUsed))
	for id := range s.HintsUsed {
		out.HintsUsed[id] = struct{}{}
	}
	return out
}

// Action is a request to advance the attempt. Reduce treats any action whose
// precondition fails as a no-op; UI mis-sequencing must never corrupt state.
type Action interface {
	isAction()
}

// SetQuestions resets to a fresh attempt over the given sequence.
type SetQuestions struct {
	Questions []Question
	StartedAt time.Time
}

// AnswerQuestion records the outcome for the current question. TimedOut means
// the timer expired before a choice was made; AnswerID is ignored in that case.
type AnswerQuestion struct {
	AnswerID  string
	TimedOut  bool
	TimeTaken float64
}

// UseHint consumes the single hint for the current unanswered question.
type UseHint struct{}

// NextQuestion leaves feedback display: advances to the next question, or
// completes the attempt after the last one.
type NextQuestion struct {
	At time.Time
}

// Pause and Resume toggle the manual pause flag, distinct from the automatic
// post-answer pause.
type Pause struct{}
type Resume struct{}

// Reset discards the attempt; callers follow with SetQuestions for a new one.
type Reset struct{}

// Restore rebuilds a previously running attempt from a saved snapshot whose
// sensitive content survived in memory. Inconsistent snapshots are rejected.
type Restore struct {
	Questions            []Question
	UserAnswers          []UserAnswer
	HintsUsed            []string
	CurrentQuestionIndex int
	IsComplete           bool
	StartedAt            time.Time
	EndedAt              time.Time
}

func (SetQuestions) isAction()   {}
func (AnswerQuestion) isAction() {}
func (UseHint) isAction()        {}
func (NextQuestion) isAction()   {}
func (Pause) isAction()          {}
func (Resume) isAction()         {}
func (Reset) isAction()          {}
func (Restore) isAction()        {}

// Reduce is the pure transition function of the attempt state machine. It
// never fails: an action with a failing precondition returns the input state
// unchanged.
func Reduce(s State, action Action) State {
	switch action := action.(type) {
	case SetQuestions:
		if len(action.Questions) == 0 {
			return s
		}
		fresh := State{
			Questions:     append([]Question(nil), action.Questions...),
			HintsUsed:     make(map[string]struct{}),
			QuizStartTime: action.StartedAt,
		}
		return fresh

	case AnswerQuestion:
		if s.IsComplete || s.Paused {
			return s
		}
		question, ok := s.CurrentQuestion()
		if !ok || s.currentAnswered() {
			// Duplicate submissions for an already-recorded index are dropped
			// so double-fired UI events cannot produce two answers.
			return s
		}
		next := s.clone()
		answerID := action.AnswerID
		if action.TimedOut {
			answerID = ""
		}
		timeTaken := action.TimeTaken
		if timeTaken < 0 {
			timeTaken = 0
		}
		next.UserAnswers = append(next.UserAnswers, UserAnswer{
			QuestionID: question.QuestionID,
			AnswerID:   answerID,
			HintUsed:   next.HintUsedFor(question.QuestionID),
			TimeTaken:  timeTaken,
		})
		next.Paused = true
		return next

	case UseHint:
		question, ok := s.CurrentQuestion()
		if !ok || s.IsComplete || s.currentAnswered() || s.HintUsedFor(question.QuestionID) {
			return s
		}
		next := s.clone()
		next.HintsUsed[question.QuestionID] = struct{}{}
		return next

	case NextQuestion:
		if s.IsComplete || !s.Paused || !s.currentAnswered() {
			return s
		}
		next := s.clone()
		if next.CurrentQuestionIndex+1 >= len(next.Questions) {
			next.CurrentQuestionIndex = len(next.Questions)
			next.IsComplete = true
			next.Paused = true
			next.QuizEndTime = action.At
			return next
		}
		next.CurrentQuestionIndex++
		next.Paused = false
		return next

	case Pause:
		if s.Paused {
			return s
		}
		next := s.clone()
		next.Paused = true
		return next

	case Resume:
		if !s.Paused || s.IsComplete || s.currentAnswered() {
			// The automatic post-answer pause only ends via NextQuestion.
			return s
		}
		next := s.clone()
		next.Paused = false
		return next

	case Reset:
		return State{HintsUsed: make(map[string]struct{})}

	case Restore:
		if !restoreConsistent(action) {
			return s
		}
		next := State{
			Questions:            append([]Question(nil), action.Questions...),
			CurrentQuestionIndex: action.CurrentQuestionIndex,
			UserAnswers:          append([]UserAnswer(nil), action.UserAnswers...),
			HintsUsed:            make(map[string]struct{}, len(action.HintsUsed)),
			IsComplete:           action.IsComplete,
			Paused:               action.IsComplete,
			QuizStartTime:        action.StartedAt,
			QuizEndTime:          action.EndedAt,
		}
		for _, id := range action.HintsUsed {
			next.HintsUsed[id] = struct{}{}
		}
		return next
	}

	return s
}

func restoreConsistent(r Restore) bool {
	if len(r.Questions) == 0 {
		return false
	}
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex > len(r.Questions) {
		return false
	}
	if r.IsComplete != (r.CurrentQuestionIndex == len(r.Questions)) {
		return false
	}
	if len(r.UserAnswers) != r.CurrentQuestionIndex {
		return false
	}
	for idx, answer := range r.UserAnswers {
		if answer.QuestionID != r.Questions[idx].QuestionID {
			return false
		}
	}
	return true
}

// Engine serializes dispatches over a State and notifies observers when a
// dispatch actually changed something. The reducer itself stays pure; the
// mutex is the Go stand-in for single-threaded event-loop atomicity, since
// the auto-save ticker observes from another goroutine.
type Engine struct {
	mu    sync.Mutex
	state State
	hooks []func(State)
}

func NewEngine() *Engine {
	return &Engine{
		state: State{HintsUsed: make(map[string]struct{})},
	}
}

// Dispatch applies an action and returns the resulting state snapshot.
func (e *Engine) Dispatch(action Action) State {
	e.mu.Lock()
	before := e.state
	after := Reduce(before, action)
	e.state = after
	hooks := e.hooks
	snapshot := after.clone()
	e.mu.Unlock()

	if stateChanged(before, after) {
		for _, hook := range hooks {
			hook(snapshot)
		}
	}
	return snapshot
}

// State returns a defensive snapshot of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// OnChange registers an observer invoked after every state-changing dispatch.
// Observers run outside the engine lock and may call State or Dispatch.
func (e *Engine) OnChange(hook func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// stateChanged compares the trackable fields; sensitive content never changes
// without one of these moving too.
func stateChanged(a, b State) bool {
	return a.CurrentQuestionIndex != b.CurrentQuestionIndex ||
		len(a.UserAnswers) != len(b.UserAnswers) ||
		len(a.HintsUsed) != len(b.HintsUsed) ||
		a.IsComplete != b.IsComplete ||
		a.Paused != b.Paused ||
		len(a.Questions) != len(b.Questions) ||
		!a.QuizStartTime.Equal(b.QuizStartTime)
}
