package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"animal-quiz/internal/config"
	"animal-quiz/internal/progress"
	"animal-quiz/internal/quiz"
	"animal-quiz/internal/storage/sqlite"
)

// App drives one interactive attempt. It plays the roles the engine treats as
// external collaborators: answer timer, pause/visibility signal source and
// renderer.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *progress.Store
	engine *quiz.Engine
	rng    *rand.Rand
	lines  chan string
	out    io.Writer
}

func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, in io.Reader, out io.Writer) error {
	bank, err := quiz.LoadBank(cfg.QuestionsPath)
	if err != nil {
		return err
	}

	kv, err := sqlite.NewKVStore(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	store := progress.New(kv, log, progress.Options{LimitBytes: cfg.StorageLimitBytes})
	engine := quiz.NewEngine()
	store.TrackEngine(ctx, engine)

	autoSaveCtx, cancelAutoSave := context.WithCancel(ctx)
	defer cancelAutoSave()
	go store.RunAutoSave(autoSaveCtx, cfg.AutoSaveInterval)

	app := &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		engine: engine,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		lines:  make(chan string),
		out:    out,
	}
	go app.readLines(in)

	if !store.Available(ctx) {
		fmt.Fprintln(out, "Note: progress storage is unavailable, this attempt will not survive closing the program.")
	}

	app.startOrResume(ctx, bank)
	return app.loop(ctx)
}

func (a *App) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		a.lines <- strings.TrimSpace(scanner.Text())
	}
	close(a.lines)
}

// startOrResume rehydrates a saved attempt when the sensitive slot survived,
// and otherwise degrades to a fresh attempt: saved position without question
// content is not resumable, by design.
func (a *App) startOrResume(ctx context.Context, bank *quiz.Bank) {
	if resume := a.store.LoadProgress(ctx); resume != nil && !resume.IsComplete {
		if resume.HasSensitiveData() {
			state := a.engine.Dispatch(quiz.Restore{
				Questions:            resume.Questions,
				UserAnswers:          resume.UserAnswers,
				HintsUsed:            resume.HintsUsed,
				CurrentQuestionIndex: resume.CurrentQuestionIndex,
				IsComplete:           resume.IsComplete,
				StartedAt:            resume.StartTime,
				EndedAt:              resume.QuizEndTime,
			})
			if state.Phase() == quiz.PhaseInProgress {
				fmt.Fprintf(a.out, "Resuming your quiz at question %d of %d.\n", resume.CurrentQuestionIndex+1, resume.TotalQuestions)
				return
			}
		}
		fmt.Fprintf(a.out, "Found progress from an earlier run (question %d of %d), but answer history is never stored. Starting a new quiz.\n",
			resume.CurrentQuestionIndex+1, resume.TotalQuestions)
		a.store.ClearProgress(ctx)
	}

	questions, err := quiz.SelectAttemptQuestions(bank, a.rng)
	if err != nil {
		// Bank construction already enforced the per-difficulty minimums.
		a.log.Error("question selection failed", zap.Error(err))
		return
	}
	a.engine.Dispatch(quiz.SetQuestions{Questions: questions, StartedAt: time.Now().UTC()})
}

func (a *App) loop(ctx context.Context) error {
	fmt.Fprintln(a.out, "\nWeird Animal Quiz — answer with A-D, h for a hint, p to pause, q to quit.")

	for {
		state := a.engine.State()
		if state.IsComplete {
			a.showResults(ctx, state)
			return nil
		}
		question, ok := state.CurrentQuestion()
		if !ok {
			return nil
		}

		a.printQuestion(state.CurrentQuestionIndex+1, len(state.Questions), question, false)

		quit, err := a.askQuestion(ctx, question)
		if err != nil {
			return err
		}
		if quit {
			a.store.OnTerminate(ctx)
			fmt.Fprintln(a.out, "Progress saved. See you next time!")
			return nil
		}

		a.showFeedback(question)
		if quit := a.waitForContinue(); quit {
			a.store.OnTerminate(ctx)
			return nil
		}
		a.engine.Dispatch(quiz.NextQuestion{At: time.Now().UTC()})
	}
}

// askQuestion collects one answer within the question timer. Returns quit=true
// when the player asked to leave.
func (a *App) askQuestion(ctx context.Context, question quiz.Question) (bool, error) {
	deadline := time.Now().Add(a.cfg.QuestionTimer)
	started := time.Now()
	var pausedFor time.Duration
	hinted := false

	for {
		select {
		case <-ctx.Done():
			a.store.OnTerminate(ctx)
			return true, nil

		case <-time.After(time.Until(deadline)):
			fmt.Fprintln(a.out, "\nTime's up!")
			a.engine.Dispatch(quiz.AnswerQuestion{TimedOut: true, TimeTaken: a.cfg.QuestionTimer.Seconds()})
			return false, nil

		case line, alive := <-a.lines:
			if !alive {
				a.store.OnTerminate(ctx)
				return true, nil
			}

			switch strings.ToLower(line) {
			case "q":
				return true, nil

			case "p":
				pauseStarted := time.Now()
				a.engine.Dispatch(quiz.Pause{})
				a.store.OnBackground(ctx)
				fmt.Fprintln(a.out, "Paused. Press Enter to resume.")
				if _, alive := <-a.lines; !alive {
					return true, nil
				}
				a.store.OnForeground(ctx)
				a.engine.Dispatch(quiz.Resume{})
				paused := time.Since(pauseStarted)
				pausedFor += paused
				deadline = deadline.Add(paused)
				a.printQuestion(0, 0, question, hinted)

			case "h":
				state := a.engine.Dispatch(quiz.UseHint{})
				if state.HintUsedFor(question.QuestionID) {
					hinted = true
					fmt.Fprintln(a.out, "Hint: two wrong answers removed (costs one point).")
					a.printQuestion(0, 0, question, true)
				} else {
					fmt.Fprintln(a.out, "No hint available for this question.")
				}

			default:
				index := letterIndex(line)
				if index < 0 || index >= len(question.Answers) {
					fmt.Fprintln(a.out, "Please answer with A-D, or h / p / q.")
					continue
				}
				elapsed := (time.Since(started) - pausedFor).Seconds()
				a.engine.Dispatch(quiz.AnswerQuestion{
					AnswerID:  question.Answers[index].AnswerID,
					TimeTaken: elapsed,
				})
				return false, nil
			}
		}
	}
}

func (a *App) printQuestion(number, total int, question quiz.Question, hinted bool) {
	fmt.Fprintln(a.out)
	if number > 0 {
		fmt.Fprintf(a.out, "Question %d of %d [%s]  %s\n\n", number, total, question.Difficulty, strings.Join(question.Emojis, " "))
	} else {
		fmt.Fprintf(a.out, "[%s]  %s\n\n", question.Difficulty, strings.Join(question.Emojis, " "))
	}
	fmt.Fprintln(a.out, question.Text)
	fmt.Fprintln(a.out)

	eliminated := map[string]bool{}
	if hinted {
		eliminated = a.eliminateTwo(question)
	}
	for idx, answer := range question.Answers {
		if eliminated[answer.AnswerID] {
			continue
		}
		fmt.Fprintf(a.out, "%c. %s\n", 'A'+idx, answer.Text)
	}
	fmt.Fprintln(a.out)
}

// eliminateTwo picks two incorrect answers to hide. Seeded per question id so
// re-rendering after a pause hides the same pair.
func (a *App) eliminateTwo(question quiz.Question) map[string]bool {
	var wrong []string
	for _, answer := range question.Answers {
		if !answer.IsCorrect {
			wrong = append(wrong, answer.AnswerID)
		}
	}
	seed := int64(0)
	for _, r := range question.QuestionID {
		seed = seed*31 + int64(r)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })

	eliminated := make(map[string]bool, 2)
	for idx := 0; idx < len(wrong) && idx < 2; idx++ {
		eliminated[wrong[idx]] = true
	}
	return eliminated
}

func (a *App) showFeedback(question quiz.Question) {
	state := a.engine.State()
	if len(state.UserAnswers) == 0 {
		return
	}
	answer := state.UserAnswers[len(state.UserAnswers)-1]

	fmt.Fprintln(a.out)
	switch {
	case answer.AnswerID == "":
		fmt.Fprintf(a.out, "No answer in time. The correct answer was %s.\n", a.correctText(question))
	case answer.AnswerID == question.CorrectAnswerID():
		fmt.Fprintln(a.out, "Correct!")
	default:
		fmt.Fprintf(a.out, "Not quite. The correct answer was %s.\n", a.correctText(question))
	}
	fmt.Fprintf(a.out, "\n%s\n", question.Explanation)
	fmt.Fprintf(a.out, "Fun fact: %s\n", question.FunFact)
	fmt.Fprintln(a.out, "\nPress Enter to continue (q to quit).")
}

func (a *App) correctText(question quiz.Question) string {
	for _, answer := range question.Answers {
		if answer.IsCorrect {
			return answer.Text
		}
	}
	return ""
}

func (a *App) waitForContinue() bool {
	line, alive := <-a.lines
	if !alive {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(line), "q")
}

func (a *App) showResults(ctx context.Context, state quiz.State) {
	report := quiz.ScoreAttempt(state.Questions, state.UserAnswers, state.HintsUsed)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Quiz complete!")
	fmt.Fprintf(a.out, "Score: %d/%d (%d%%)\n", report.Score, report.MaxScore, report.Percentage)
	fmt.Fprintf(a.out, "Correct answers: %d of %d\n", report.CorrectCount, len(state.Questions))
	if report.HintPenalty > 0 {
		fmt.Fprintf(a.out, "Hints used: %d (-%d points)\n", report.HintPenalty, report.HintPenalty)
	}
	if !state.QuizStartTime.IsZero() && !state.QuizEndTime.IsZero() {
		fmt.Fprintf(a.out, "Total time: %s\n", state.QuizEndTime.Sub(state.QuizStartTime).Round(time.Second))
	}

	// A finished attempt is not resumable; clear it so the next run starts fresh.
	a.store.ClearProgress(ctx)
}

func letterIndex(line string) int {
	line = strings.ToUpper(strings.TrimSpace(line))
	if len(line) != 1 {
		return -1
	}
	letter := line[0]
	if letter < 'A' || letter > 'D' {
		return -1
	}
	return int(letter - 'A')
}
