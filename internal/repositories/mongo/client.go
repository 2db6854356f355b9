package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mockmate/internal/repositories"
)

const (
	interviewsCollection = "interviews"
	answersCollection    = "userAnswers"
)

type Client struct {
	raw    *mongo.Client
	dbName string
}

func NewClient(ctx context.Context, uri, dbName string) (*Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}
	if dbName == "" {
		dbName = "mockmate"
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Client{raw: c, dbName: dbName}, nil
}

func (c *Client) DB() (*mongo.Database, error) {
	if c == nil || c.raw == nil {
		return nil, errors.New("mongo client not initialized")
	}
	return c.raw.Database(c.dbName), nil
}

// NewStore builds both repositories and makes sure their indexes exist.
func NewStore(ctx context.Context, c *Client) (*repositories.Store, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	interviews, err := NewInterviewRepo(ctx, db.Collection(interviewsCollection))
	if err != nil {
		return nil, err
	}
	answers, err := NewAnswerRepo(ctx, db.Collection(answersCollection))
	if err != nil {
		return nil, err
	}
	return &repositories.Store{
		Interviews: interviews,
		Answers:    answers,
		Ping: func(ctx context.Context) error {
			return c.raw.Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context) error {
			return c.raw.Disconnect(ctx)
		},
	}, nil
}
