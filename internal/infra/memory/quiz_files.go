package memory

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kidlearn-service/internal/domain"
)

// LoadQuizFile reads one quiz from a YAML file.
func LoadQuizFile(path string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := yaml.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return quiz, nil
}

// LoadQuizDir reads every *.yaml quiz in dir, keyed by quiz id.
func LoadQuizDir(dir string) (map[string]domain.Quiz, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	quizzes := make(map[string]domain.Quiz, len(paths))
	for _, p := range paths {
		quiz, err := LoadQuizFile(p)
		if err != nil {
			return nil, err
		}
		quizzes[quiz.ID] = quiz
	}
	return quizzes, nil
}
