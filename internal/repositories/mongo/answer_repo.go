package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

// AnswerRepo wraps the userAnswers collection. Documents are keyed by attempt key,
// so the _id uniqueness rejects a second attempt for the same (user, question).
type AnswerRepo struct{ col *mongo.Collection }

func NewAnswerRepo(ctx context.Context, col *mongo.Collection) (*AnswerRepo, error) {
	r := &AnswerRepo{col: col}
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "mockIdRef", Value: 1}, {Key: "userId", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create userAnswers index: %w", err)
	}
	return r, nil
}

func (r *AnswerRepo) ExistsForQuestion(ctx context.Context, userID, question string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.col.FindOne(ctx, bson.M{"_id": models.AttemptKey(userID, question)}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *AnswerRepo) Create(ctx context.Context, attempt *models.AnswerAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	if attempt.EvaluationStatus == "" {
		attempt.EvaluationStatus = models.EvaluationSuccess
	}
	_, err := r.col.InsertOne(ctx, attempt)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrAlreadyRecorded
	}
	return err
}

func (r *AnswerRepo) ListByInterview(ctx context.Context, interviewID, userID string) ([]models.AnswerAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"mockIdRef": interviewID, "userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AnswerAttempt{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
