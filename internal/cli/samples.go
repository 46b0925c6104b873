package cli

import "kidlearn-service/internal/domain"

// sampleQuizzes keeps the service usable with no config at all; real content lives in
// config/quizzes or Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"addition-basics": {
			ID:    "addition-basics",
			Title: "Addition Basics",
			Questions: []domain.QuizQuestion{
				{
					ID:            "1",
					Prompt:        "What is 2 + 3?",
					Options:       []string{"4", "5", "6", "7"},
					CorrectAnswer: 1,
					Explanation:   "When we add 2 + 3, we count forward 3 steps from 2: 3, 4, 5. So 2 + 3 = 5!",
					Difficulty:    domain.DifficultyEasy,
					Points:        10,
					Hint:          "Try counting on your fingers!",
				},
				{
					ID:            "2",
					Prompt:        "What is 4 + 1?",
					Options:       []string{"3", "4", "5", "6"},
					CorrectAnswer: 2,
					Explanation:   "When we add 4 + 1, we get 5. You can count: 4, then one more makes 5!",
					Difficulty:    domain.DifficultyEasy,
					Points:        10,
					Hint:          "Start with 4 and add 1 more!",
				},
				{
					ID:            "3",
					Prompt:        "What is 5 + 4?",
					Options:       []string{"8", "9", "10", "7"},
					CorrectAnswer: 1,
					Explanation:   "When we add 5 + 4, we get 9. You can use your fingers or count forward from 5!",
					Difficulty:    domain.DifficultyMedium,
					Points:        15,
					Hint:          "Use both hands to help you count!",
				},
			},
		},
	}
}

func sampleGames() []domain.Game {
	return []domain.Game{
		{
			ID:               "math-adventure",
			Title:            "Math Adventure Quest",
			Description:      "Solve addition and subtraction problems on a journey through magical lands.",
			Category:         "Mathematics",
			Difficulty:       domain.DifficultyEasy,
			EstimatedMinutes: 15,
			Type:             domain.GameTypeHybrid,
			URL:              "/games/math-adventure",
			Skills:           []string{"Addition", "Subtraction", "Number Recognition", "Problem Solving"},
			AgeRange:         "5-8 years",
			MaxScore:         1000,
			RequiredLevel:    1,
		},
		{
			ID:               "science-lab",
			Title:            "Science Lab Explorer",
			Description:      "Conduct fun experiments and discover the wonders of science.",
			Category:         "Science",
			Difficulty:       domain.DifficultyHard,
			EstimatedMinutes: 25,
			Type:             domain.GameTypeNative,
			Skills:           []string{"Scientific Method", "Observation", "Hypothesis", "Experimentation"},
			AgeRange:         "8-12 years",
			MaxScore:         2000,
			Locked:           true,
			RequiredLevel:    5,
		},
	}
}
