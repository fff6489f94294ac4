package services

import (
	"context"
	"fmt"
	"math"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

const (
	minAnswerScore = 0
	maxAnswerScore = 100

	pointsPerSkill = 10
	maxCVScore     = 100
)

type InterviewScoringAggregator interface {
	Aggregate(ctx context.Context, questions, answers []string) (*models.InterviewResult, error)
}

type interviewScoringAggregator struct {
	evaluator SemanticEvaluator
}

func NewInterviewScoringAggregator(evaluator SemanticEvaluator) InterviewScoringAggregator {
	return &interviewScoringAggregator{evaluator: evaluator}
}

// Aggregate scores every answer through the evaluator in one batch and
// reports the rounded mean.
func (a *interviewScoringAggregator) Aggregate(ctx context.Context, questions, answers []string) (*models.InterviewResult, error) {
	const op = "aggregate interview"

	if len(questions) != len(answers) {
		return nil, apperror.Validation(op, "questions and answers must have the same length",
			fmt.Sprintf("got %d questions and %d answers", len(questions), len(answers)))
	}
	if len(questions) == 0 {
		return &models.InterviewResult{TotalScore: 0, Evaluations: []models.AnswerEvaluation{}}, nil
	}

	evaluations, err := a.evaluator.EvaluateAnswers(ctx, questions, answers)
	if err != nil {
		return nil, apperror.Collaborator(op, "semantic evaluator", err)
	}
	if len(evaluations) != len(questions) {
		return nil, apperror.Collaborator(op, "semantic evaluator",
			fmt.Errorf("expected %d evaluations, got %d", len(questions), len(evaluations)))
	}

	sum := 0
	for i, e := range evaluations {
		if e.Score < minAnswerScore || e.Score > maxAnswerScore {
			return nil, apperror.Collaborator(op, "semantic evaluator",
				fmt.Errorf("evaluation %d has score %d outside [%d,%d]", i, e.Score, minAnswerScore, maxAnswerScore))
		}
		sum += e.Score
	}

	return &models.InterviewResult{
		TotalScore:  int(math.Round(float64(sum) / float64(len(evaluations)))),
		Evaluations: evaluations,
	}, nil
}

// CVScore converts a canonical skill count into a 0-100 score.
func CVScore(skillCount int) int {
	if skillCount <= 0 {
		return 0
	}
	return min(skillCount*pointsPerSkill, maxCVScore)
}
