package app

import (
	"time"

	"kidlearn-service/internal/domain"
)

// AttemptState is where an attempt sits in the quiz flow.
type AttemptState int

const (
	// Answering: the explanation for the current question is hidden.
	Answering AttemptState = iota
	// Reviewing: the explanation is shown and the answer is locked.
	Reviewing
	// Completed is terminal until a retake.
	Completed
)

func (s AttemptState) String() string {
	switch s {
	case Answering:
		return "answering"
	case Reviewing:
		return "reviewing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Attempt is one learner's run through a quiz. It is owned by a single caller and
// is not safe for concurrent use.
type Attempt struct {
	id         string
	learnerID  string
	quiz       domain.Quiz
	now        func() time.Time
	selections []int
	current    int
	state      AttemptState
	hintShown  bool
	startedAt  time.Time
	result     *domain.QuizResult
}

// AttemptView is a read-only snapshot for presentation.
type AttemptView struct {
	AttemptID  string       `json:"attemptId"`
	QuizID     string       `json:"quizId"`
	State      string       `json:"state"`
	Index      int          `json:"index"`
	Total      int          `json:"total"`
	Question   QuestionView `json:"question"`
	Selected   *int         `json:"selected,omitempty"`
	Correct    *bool        `json:"correct,omitempty"`
	Answered   int          `json:"answered"`
	ElapsedSec int          `json:"elapsedSeconds"`
}

// QuestionView hides the correct answer and explanation until the answer is checked.
type QuestionView struct {
	ID            string            `json:"id"`
	Prompt        string            `json:"question"`
	Options       []string          `json:"options"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	Points        int               `json:"points"`
	HasHint       bool              `json:"hasHint"`
	Hint          string            `json:"hint,omitempty"`
	CorrectAnswer *int              `json:"correctAnswer,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
}

// NewAttempt starts an attempt in Answering at the first question.
func NewAttempt(id, learnerID string, quiz domain.Quiz, now func() time.Time) (*Attempt, error) {
	if len(quiz.Questions) == 0 {
		return nil, &domain.EmptyQuizError{QuizID: quiz.ID}
	}
	if now == nil {
		now = time.Now
	}
	a := &Attempt{
		id:        id,
		learnerID: learnerID,
		quiz:      quiz,
		now:       now,
	}
	a.reset()
	return a, nil
}

func (a *Attempt) reset() {
	a.selections = make([]int, len(a.quiz.Questions))
	for i := range a.selections {
		a.selections[i] = unsetSelection
	}
	a.current = 0
	a.state = Answering
	a.hintShown = false
	a.result = nil
	a.startedAt = a.now()
}

// ID is kept across retakes.
func (a *Attempt) ID() string { return a.id }

// LearnerID returns the learner taking the attempt.
func (a *Attempt) LearnerID() string { return a.learnerID }

// Quiz returns the question set, correct answers included.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// State returns the lifecycle state.
func (a *Attempt) State() AttemptState { return a.state }

// Current is the zero-based index of the question on screen.
func (a *Attempt) Current() int { return a.current }

// Selection returns the stored option for question i.
func (a *Attempt) Selection(i int) (int, bool) {
	if i < 0 || i >= len(a.selections) || a.selections[i] == unsetSelection {
		return 0, false
	}
	return a.selections[i], true
}

// Selections returns a copy of all slots; unset slots are -1.
func (a *Attempt) Selections() []int {
	out := make([]int, len(a.selections))
	copy(out, a.selections)
	return out
}

// Elapsed is measured from the start to completion, or to now while in progress.
func (a *Attempt) Elapsed() time.Duration {
	if a.result != nil {
		return a.result.TimeSpent
	}
	return a.now().Sub(a.startedAt)
}

// Select stores option for the current question, replacing any earlier choice.
func (a *Attempt) Select(option int) error {
	switch a.state {
	case Completed:
		return domain.ErrAttemptCompleted
	case Reviewing:
		return domain.ErrAnswerLocked
	}
	q := a.quiz.Questions[a.current]
	if option < 0 || option >= len(q.Options) {
		return &domain.InvalidOptionError{QuestionID: q.ID, Index: option, Options: len(q.Options)}
	}
	a.selections[a.current] = option
	return nil
}

// Check locks the current answer and reports whether it is correct.
func (a *Attempt) Check() (bool, error) {
	if a.state == Completed {
		return false, domain.ErrAttemptCompleted
	}
	sel := a.selections[a.current]
	if sel == unsetSelection {
		return false, domain.ErrNoAnswerSelected
	}
	a.state = Reviewing
	return sel == a.quiz.Questions[a.current].CorrectAnswer, nil
}

// Next advances from Reviewing. On the last question it completes the attempt and
// grades it; completed reports that transition.
func (a *Attempt) Next() (completed bool, err error) {
	switch a.state {
	case Completed:
		return false, domain.ErrAttemptCompleted
	case Answering:
		return false, domain.ErrNotReviewing
	}
	if a.current < len(a.quiz.Questions)-1 {
		a.current++
		a.state = Answering
		a.hintShown = false
		return false, nil
	}
	a.complete()
	return true, nil
}

func (a *Attempt) complete() {
	finishedAt := a.now()
	result := Evaluate(a.quiz, a.selections, finishedAt.Sub(a.startedAt))
	result.AttemptID = a.id
	result.LearnerID = a.learnerID
	result.CompletedAt = finishedAt
	a.result = &result
	a.state = Completed
}

// Previous moves back one question and re-enters Answering with the stored selection.
func (a *Attempt) Previous() error {
	if a.state == Completed {
		return domain.ErrAttemptCompleted
	}
	if a.current == 0 {
		return domain.ErrAtFirstQuestion
	}
	a.current--
	a.state = Answering
	a.hintShown = false
	return nil
}

// Retake is the only way out of Completed.
func (a *Attempt) Retake() error {
	if a.state != Completed {
		return domain.ErrAttemptInProgress
	}
	a.reset()
	return nil
}

// Hint reveals the current question's hint.
func (a *Attempt) Hint() (string, error) {
	if a.state == Completed {
		return "", domain.ErrAttemptCompleted
	}
	hint := a.quiz.Questions[a.current].Hint
	if hint == "" {
		return "", domain.ErrNoHint
	}
	a.hintShown = true
	return hint, nil
}

// Result returns the result computed when the attempt completed.
func (a *Attempt) Result() (domain.QuizResult, error) {
	if a.result == nil {
		return domain.QuizResult{}, domain.ErrAttemptInProgress
	}
	res := *a.result
	res.Achievements = append([]string(nil), a.result.Achievements...)
	return res, nil
}

// View snapshots the current question for display.
func (a *Attempt) View() AttemptView {
	idx := a.current
	q := a.quiz.Questions[idx]
	view := AttemptView{
		AttemptID:  a.id,
		QuizID:     a.quiz.ID,
		State:      a.state.String(),
		Index:      idx,
		Total:      len(a.quiz.Questions),
		ElapsedSec: int(a.Elapsed() / time.Second),
		Question: QuestionView{
			ID:         q.ID,
			Prompt:     q.Prompt,
			Options:    append([]string(nil), q.Options...),
			Difficulty: q.Difficulty,
			Points:     q.Points,
			HasHint:    q.Hint != "",
		},
	}
	for _, s := range a.selections {
		if s != unsetSelection {
			view.Answered++
		}
	}
	if a.hintShown {
		view.Question.Hint = q.Hint
	}
	if sel, ok := a.Selection(idx); ok {
		view.Selected = &sel
	}
	if a.state != Answering {
		answer := q.CorrectAnswer
		view.Question.CorrectAnswer = &answer
		view.Question.Explanation = q.Explanation
		if view.Selected != nil {
			correct := *view.Selected == answer
			view.Correct = &correct
		}
	}
	return view
}
