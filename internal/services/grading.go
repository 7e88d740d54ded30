package services

import (
	"strings"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
)

// gradeAnswer derives the correctness flag for one submitted answer against
// the question's hidden key. It never fails: malformed input scores as wrong.
func gradeAnswer(question *models.Question, answer SubmittedAnswer) bool {
	if question.Type == models.FillInBlank {
		return gradeTextAnswer(question.CorrectAnswer, answer.TextAnswer)
	}
	return gradeChoiceAnswer(question.Options, answer.SelectedOption)
}

// gradeTextAnswer compares case-insensitively with surrounding whitespace
// trimmed. An absent key or an absent/blank submission is never correct.
func gradeTextAnswer(key *string, submitted *string) bool {
	if key == nil || submitted == nil {
		return false
	}
	want := strings.TrimSpace(*key)
	got := strings.TrimSpace(*submitted)
	if want == "" || got == "" {
		return false
	}
	return strings.EqualFold(want, got)
}

// gradeChoiceAnswer checks the selected index against the option list.
// Out-of-range or missing indexes score as wrong, not as an error.
func gradeChoiceAnswer(options []models.QuestionOption, selected *int) bool {
	if selected == nil {
		return false
	}
	idx := *selected
	if idx < 0 || idx >= len(options) {
		return false
	}
	return options[idx].IsCorrect
}

// totalMarks sums the attainable marks over a test's question set. Computed
// once at attempt creation and frozen on the ledger entry.
func totalMarks(questions []models.TestQuestion) int {
	total := 0
	for _, tq := range questions {
		total += tq.Question.Marks
	}
	return total
}

// percentage guards the zero-denominator case of an empty question set.
func percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
