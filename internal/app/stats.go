package app

import (
	"fmt"
	"math"
	"sort"
	"time"

	"kidlearn-service/internal/domain"
)

// SinceForRange converts a history range name into the earliest completion time.
// "all" (or empty) yields the zero time.
func SinceForRange(rangeName string, now time.Time) (time.Time, error) {
	switch rangeName {
	case "", "all":
		return time.Time{}, nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown range %q", rangeName)
	}
}

// ComputeGameStats aggregates records. titles maps game ids to display names.
func ComputeGameStats(records []domain.GameScoreRecord, titles map[string]string, now time.Time) domain.GameStats {
	if len(records) == 0 {
		return domain.GameStats{}
	}

	sorted := append([]domain.GameScoreRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	stats := domain.GameStats{TotalGames: len(sorted)}
	sum := 0
	for i, r := range sorted {
		sum += r.Score
		stats.TotalTimeSpent += r.TimeSpentSeconds
		stats.TotalAchievements += len(r.Achievements)
		if i == 0 || r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
	}
	stats.AverageScore = int(math.Round(float64(sum) / float64(len(sorted))))
	stats.FavoriteGame = favoriteGame(sorted, titles)
	stats.CurrentStreak = dayStreak(sorted, now)
	stats.ImprovementRate = improvementRate(sorted)
	return stats
}

func favoriteGame(records []domain.GameScoreRecord, titles map[string]string) string {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.GameID]++
	}
	best, bestCount := "", 0
	for id, n := range counts {
		if n > bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	if title, ok := titles[best]; ok && title != "" {
		return title
	}
	return best
}

// dayStreak walks records newest first; each record may be at most streak+1 days
// older than the previous one for the streak to continue.
func dayStreak(newestFirst []domain.GameScoreRecord, now time.Time) int {
	streak := 0
	cursor := now
	for _, r := range newestFirst {
		days := int(math.Floor(cursor.Sub(r.CompletedAt).Hours() / 24))
		if days > streak+1 {
			break
		}
		streak++
		cursor = r.CompletedAt
	}
	return streak
}

// improvementRate compares the recent half of the history with the older half.
func improvementRate(newestFirst []domain.GameScoreRecord) int {
	if len(newestFirst) < 4 {
		return 0
	}
	half := len(newestFirst) / 2
	recent := averageScore(newestFirst[:half])
	older := averageScore(newestFirst[half:])
	if older == 0 {
		return 0
	}
	return int(math.Round((recent - older) / older * 100))
}

func averageScore(records []domain.GameScoreRecord) float64 {
	sum := 0
	for _, r := range records {
		sum += r.Score
	}
	return float64(sum) / float64(len(records))
}
