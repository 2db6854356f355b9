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

// InterviewRepo wraps the interviews collection
type InterviewRepo struct{ col *mongo.Collection }

// NewInterviewRepo ensures the owner listing index
func NewInterviewRepo(ctx context.Context, col *mongo.Collection) (*InterviewRepo, error) {
	r := &InterviewRepo{col: col}
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interviews index: %w", err)
	}
	return r, nil
}

func (r *InterviewRepo) Create(ctx context.Context, profile *models.InterviewProfile) error {
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, profile)
	return err
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.InterviewProfile, error) {
	var profile models.InterviewProfile
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *InterviewRepo) ListByUser(ctx context.Context, userID string) ([]models.InterviewProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.InterviewProfile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InterviewRepo) Update(ctx context.Context, profile *models.InterviewProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": profile.ID}, bson.M{"$set": bson.M{
		"position":      profile.Position,
		"description":   profile.Description,
		"experience":    profile.Experience,
		"techStack":     profile.TechStack,
		"questionTypes": profile.QuestionTypes,
		"questions":     profile.Questions,
		"updatedAt":     profile.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *InterviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
