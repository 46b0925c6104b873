package domain

import "time"

// Difficulty tags a question or a game.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// QuizQuestion is a multiple choice question. CorrectAnswer is a 0-based index into Options.
type QuizQuestion struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	Prompt        string     `json:"question" yaml:"question" validate:"required"`
	Options       []string   `json:"options" yaml:"options" validate:"min=2,dive,required"`
	CorrectAnswer int        `json:"correctAnswer" yaml:"correctAnswer" validate:"gte=0"`
	Explanation   string     `json:"explanation" yaml:"explanation"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty" validate:"oneof=Easy Medium Hard"`
	Points        int        `json:"points" yaml:"points" validate:"gt=0"`
	Hint          string     `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Quiz is an ordered question set.
type Quiz struct {
	ID        string         `json:"id" yaml:"id" validate:"required"`
	Title     string         `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []QuizQuestion `json:"questions" yaml:"questions" validate:"dive"`
}

// QuizResult is derived once from a finalized attempt.
type QuizResult struct {
	AttemptID        string        `json:"attemptId"`
	QuizID           string        `json:"quizId"`
	LearnerID        string        `json:"learnerId"`
	ScorePercent     int           `json:"score"`
	TotalQuestions   int           `json:"totalQuestions"`
	CorrectAnswers   int           `json:"correctAnswers"`
	TotalPoints      int           `json:"totalPoints"`
	Grade            string        `json:"grade"`
	Achievements     []string      `json:"achievements"`
	TimeSpent        time.Duration `json:"-"`
	TimeSpentMinutes int           `json:"timeSpent"`
	CompletedAt      time.Time     `json:"completedAt"`
}

// GameStatus is the lifecycle state of a hosted game session.
type GameStatus string

const (
	GameStatusStarted    GameStatus = "started"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusAbandoned  GameStatus = "abandoned"
)

// Terminal reports whether no further transition is expected.
func (s GameStatus) Terminal() bool {
	return s == GameStatusCompleted || s == GameStatusAbandoned
}

// GameSession tracks one learner's run through a hosted game.
type GameSession struct {
	ID               string     `json:"id"`
	GameID           string     `json:"gameId"`
	LearnerID        string     `json:"learnerId"`
	Status           GameStatus `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	LastUpdated      time.Time  `json:"lastUpdated"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	FinalScore       *int       `json:"finalScore,omitempty"`
	TimeSpentSeconds *int       `json:"timeSpent,omitempty"`
}

// SessionUpdate is a merge patch for a GameSession; nil fields are left untouched.
type SessionUpdate struct {
	Status           GameStatus
	LastUpdated      time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	FinalScore       *int
	TimeSpentSeconds *int
}

// Apply merges the patch into s.
func (u SessionUpdate) Apply(s *GameSession) {
	if u.Status != "" {
		s.Status = u.Status
	}
	if !u.LastUpdated.IsZero() {
		s.LastUpdated = u.LastUpdated
	}
	if u.StartedAt != nil {
		s.StartedAt = *u.StartedAt
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		s.CompletedAt = &t
	}
	if u.FinalScore != nil {
		v := *u.FinalScore
		s.FinalScore = &v
	}
	if u.TimeSpentSeconds != nil {
		v := *u.TimeSpentSeconds
		s.TimeSpentSeconds = &v
	}
}

// GameScoreRecord is written exactly once per completed session and never changed.
type GameScoreRecord struct {
	ID               string    `json:"id"`
	GameID           string    `json:"gameId"`
	LearnerID        string    `json:"learnerId"`
	Score            int       `json:"score"`
	MaxScore         int       `json:"maxScore"`
	TimeSpentSeconds int       `json:"timeSpent"`
	CompletedAt      time.Time `json:"completedAt"`
	Difficulty       string    `json:"difficulty"`
	Achievements     []string  `json:"achievements"`
	SessionID        string    `json:"sessionId"`
}

// ScoreFilter narrows a learner's score history.
type ScoreFilter struct {
	Since  time.Time
	GameID string
	Limit  int
}

// Matches reports whether r passes the filter.
func (f ScoreFilter) Matches(r GameScoreRecord) bool {
	if !f.Since.IsZero() && r.CompletedAt.Before(f.Since) {
		return false
	}
	if f.GameID != "" && r.GameID != f.GameID {
		return false
	}
	return true
}

// GameType tells how a game is hosted.
type GameType string

const (
	GameTypeWeb    GameType = "web"
	GameTypeNative GameType = "native"
	GameTypeHybrid GameType = "hybrid"
)

// Game is a catalog entry.
type Game struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	Category         string     `json:"category" yaml:"category"`
	Difficulty       Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedMinutes int        `json:"estimatedTime" yaml:"estimatedTime"`
	Type             GameType   `json:"gameType" yaml:"gameType"`
	URL              string     `json:"gameUrl,omitempty" yaml:"gameUrl,omitempty"`
	Skills           []string   `json:"skills" yaml:"skills"`
	AgeRange         string     `json:"ageRange" yaml:"ageRange"`
	MaxScore         int        `json:"maxScore" yaml:"maxScore"`
	Locked           bool       `json:"isLocked" yaml:"isLocked"`
	RequiredLevel    int        `json:"requiredLevel" yaml:"requiredLevel"`
}

// GameStats aggregates a learner's score history.
type GameStats struct {
	TotalGames        int    `json:"totalGames"`
	TotalTimeSpent    int    `json:"totalTimeSpent"`
	AverageScore      int    `json:"averageScore"`
	BestScore         int    `json:"bestScore"`
	FavoriteGame      string `json:"favoriteGame"`
	CurrentStreak     int    `json:"currentStreak"`
	TotalAchievements int    `json:"totalAchievements"`
	ImprovementRate   int    `json:"improvementRate"`
}
