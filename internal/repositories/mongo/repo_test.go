package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

func TestInterviewRepoGetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := &InterviewRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "iv-1"},
			{Key: "userId", Value: "user-1"},
			{Key: "position", Value: "Backend Engineer"},
			{Key: "techStack", Value: "Go, Python"},
			{Key: "questions", Value: bson.A{bson.D{{Key: "question", Value: "q1"}, {Key: "answer", Value: "a1"}}}},
		}))

		got, err := repo.GetByID(context.Background(), "iv-1")
		if err != nil {
			t.Fatalf("GetByID error: %v", err)
		}
		if got.UserID != "user-1" || got.TechStack != "Go, Python" || len(got.Questions) != 1 {
			t.Fatalf("unexpected profile: %+v", got)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := &InterviewRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInterviewRepoListUpdateDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		repo := &InterviewRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b"}, {Key: "userId", Value: "user-1"}},
			bson.D{{Key: "_id", Value: "a"}, {Key: "userId", Value: "user-1"}},
		))

		list, err := repo.ListByUser(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("ListByUser error: %v", err)
		}
		if len(list) != 2 || list[0].ID != "b" {
			t.Fatalf("unexpected list: %+v", list)
		}
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := &InterviewRepo{col: mt.Coll}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), &models.InterviewProfile{ID: "nope"})
		if !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := &InterviewRepo{col: mt.Coll}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		if err := repo.Delete(context.Background(), "iv-1"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	})
}

func TestAnswerRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("exists", func(mt *mtest.T) {
		repo := &AnswerRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: models.AttemptKey("user-1", "q1")}}))

		exists, err := repo.ExistsForQuestion(context.Background(), "user-1", "q1")
		if err != nil || !exists {
			t.Fatalf("expected existing attempt, got %v %v", exists, err)
		}
	})

	mt.Run("not exists", func(mt *mtest.T) {
		repo := &AnswerRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		exists, err := repo.ExistsForQuestion(context.Background(), "user-1", "q1")
		if err != nil || exists {
			t.Fatalf("expected no attempt, got %v %v", exists, err)
		}
	})

	mt.Run("insert", func(mt *mtest.T) {
		repo := &AnswerRepo{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		attempt := &models.AnswerAttempt{ID: models.AttemptKey("user-1", "q1"), UserID: "user-1", Question: "q1"}
		if err := repo.Create(context.Background(), attempt); err != nil {
			t.Fatalf("Create error: %v", err)
		}
		if attempt.EvaluationStatus != models.EvaluationSuccess || attempt.CreatedAt.IsZero() {
			t.Fatalf("expected defaults to be filled: %+v", attempt)
		}
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := &AnswerRepo{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		attempt := &models.AnswerAttempt{ID: models.AttemptKey("user-1", "q1"), UserID: "user-1", Question: "q1"}
		if err := repo.Create(context.Background(), attempt); !errors.Is(err, repositories.ErrAlreadyRecorded) {
			t.Fatalf("expected ErrAlreadyRecorded, got %v", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := &AnswerRepo{col: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "k1"}, {Key: "mockIdRef", Value: "iv-1"}, {Key: "rating", Value: 8}, {Key: "user_ans", Value: "answer"}},
		))

		answers, err := repo.ListByInterview(context.Background(), "iv-1", "user-1")
		if err != nil {
			t.Fatalf("ListByInterview error: %v", err)
		}
		if len(answers) != 1 || answers[0].Rating != 8 || answers[0].UserAnswer != "answer" {
			t.Fatalf("unexpected answers: %+v", answers)
		}
	})
}
