package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"kidlearn-service/internal/domain"
)

// QuizValidator rejects malformed quiz payloads before an attempt can start.
type QuizValidator struct {
	validate *validator.Validate
}

func NewQuizValidator() *QuizValidator {
	v := validator.New()
	v.RegisterStructValidation(correctAnswerInRange, domain.QuizQuestion{})
	return &QuizValidator{validate: v}
}

// Validate returns an EmptyQuizError for a quiz without questions and an
// InvalidQuizError for anything else that is malformed.
func (qv *QuizValidator) Validate(quiz domain.Quiz) error {
	if len(quiz.Questions) == 0 {
		return &domain.EmptyQuizError{QuizID: quiz.ID}
	}
	if err := qv.validate.Struct(quiz); err != nil {
		return &domain.InvalidQuizError{QuizID: quiz.ID, Reason: describe(err)}
	}
	return nil
}

func correctAnswerInRange(sl validator.StructLevel) {
	q := sl.Current().Interface().(domain.QuizQuestion)
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		sl.ReportError(q.CorrectAnswer, "CorrectAnswer", "correctAnswer", "option_index", "")
	}
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
