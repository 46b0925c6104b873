package app

import (
	"math"
	"time"

	"kidlearn-service/internal/domain"
)

// Achievement labels awarded at quiz completion.
const (
	AchievementPerfectScore   = "Perfect Score"
	AchievementMathGenius     = "Math Genius"
	AchievementSpeedDemon     = "Speed Demon"
	AchievementAdditionMaster = "Addition Master"
	AchievementKeepPracticing = "Keep Practicing"
)

const (
	speedDemonMaxMinutes     = 5
	additionMasterMinCorrect = 5
	unsetSelection           = -1
)

var gradeLadder = []struct {
	min   int
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "B+"},
	{75, "B"},
	{70, "C+"},
	{65, "C"},
	{60, "D"},
}

// Grade maps a score percentage to a letter; the first threshold from the top wins.
func Grade(scorePercent int) string {
	for _, step := range gradeLadder {
		if scorePercent >= step.min {
			return step.grade
		}
	}
	return "F"
}

// Achievements returns every badge that applies, in priority order, or the
// consolation badge when none do.
func Achievements(scorePercent, correct, minutes int) []string {
	var out []string
	if scorePercent == 100 {
		out = append(out, AchievementPerfectScore)
	}
	if scorePercent >= 90 {
		out = append(out, AchievementMathGenius)
	}
	if minutes <= speedDemonMaxMinutes && correct > 0 {
		out = append(out, AchievementSpeedDemon)
	}
	if correct >= additionMasterMinCorrect {
		out = append(out, AchievementAdditionMaster)
	}
	if len(out) == 0 {
		out = append(out, AchievementKeepPracticing)
	}
	return out
}

// WholeMinutes rounds d to the nearest minute.
func WholeMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// Evaluate grades a set of selections against the quiz. Unset selections never count.
// It is pure: the same inputs always give the same result.
func Evaluate(quiz domain.Quiz, selections []int, elapsed time.Duration) domain.QuizResult {
	total := len(quiz.Questions)
	correct, points := 0, 0
	for i, q := range quiz.Questions {
		if i >= len(selections) || selections[i] == unsetSelection {
			continue
		}
		if selections[i] == q.CorrectAnswer {
			correct++
			points += q.Points
		}
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(correct) / float64(total)))
	}
	minutes := WholeMinutes(elapsed)

	return domain.QuizResult{
		QuizID:           quiz.ID,
		ScorePercent:     percent,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		TotalPoints:      points,
		Grade:            Grade(percent),
		Achievements:     Achievements(percent, correct, minutes),
		TimeSpent:        elapsed,
		TimeSpentMinutes: minutes,
	}
}
