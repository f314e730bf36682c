package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/delivery"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
)

// gradingGateway serves the submission pipeline from the repositories.
type gradingGateway struct {
	repo repositories.Repository
}

func newGradingGateway(repo repositories.Repository) delivery.Gateway {
	return &gradingGateway{repo: repo}
}

func (g *gradingGateway) QuestionByNumber(ctx context.Context, assessmentID uint, number int) (*models.Question, error) {
	q, err := g.repo.Question().GetByNumber(ctx, nil, assessmentID, number)
	if err != nil {
		return nil, fmt.Errorf("question %d of assessment %d: %w", number, assessmentID, err)
	}
	return q, nil
}

func (g *gradingGateway) ChoiceIsCorrect(ctx context.Context, scope delivery.ChoiceScope, choiceID uint) (bool, error) {
	choice, err := g.repo.Choice().GetByID(ctx, nil, choiceID)
	if repositories.IsNotFoundError(err) {
		// a stale or forged choice id scores nothing
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("choice %d: %w", choiceID, err)
	}
	return choice.IsCorrect && scope.Covers(choice), nil
}

func (g *gradingGateway) StatementKey(ctx context.Context, questionID uint) (models.StatementChoice, error) {
	key, err := g.repo.StatementKey().GetByQuestionID(ctx, nil, questionID)
	if err != nil {
		return "", fmt.Errorf("statement key of question %d: %w", questionID, err)
	}
	return key.Correct, nil
}

func (g *gradingGateway) UpsertResult(ctx context.Context, userID string, in delivery.ResultInput) error {
	return g.repo.Result().Upsert(ctx, nil, &models.Result{
		UserID:              userID,
		AssessmentID:        in.AssessmentID,
		Score:               in.Score,
		TimeSpent:           in.TimeSpent,
		TotalCorrectAnswers: in.TotalCorrect,
	})
}

func (g *gradingGateway) UpsertListeningResult(ctx context.Context, userID string, in delivery.ResultInput) error {
	return g.repo.Result().UpsertListening(ctx, nil, &models.ListeningResult{
		UserID:              userID,
		AssessmentID:        in.AssessmentID,
		Score:               in.Score,
		TimeSpent:           in.TimeSpent,
		TotalCorrectAnswers: in.TotalCorrect,
	})
}

func (g *gradingGateway) SubmitEssay(ctx context.Context, userID string, in delivery.EssayInput) error {
	return g.repo.Essay().Create(ctx, nil, &models.Essay{
		UserID:       userID,
		AssessmentID: in.AssessmentID,
		Part1Result:  in.Part1,
		Part2Result:  in.Part2,
	})
}
