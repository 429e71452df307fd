package internal

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// ModerationRecorder appends one audit record per admin decision. The
// collection is append-only; records are never updated or removed.
type ModerationRecorder interface {
	CreateRecord(ctx context.Context, record *dbModerationRecord) error
}

type moderationRecorder struct {
	client *mongo.Client
}

func NewModerationRecorder(client *mongo.Client) ModerationRecorder {
	return &moderationRecorder{client: client}
}

func (s *moderationRecorder) CreateRecord(ctx context.Context, record *dbModerationRecord) error {

	record.CreateTime = time.Now()

	coll := s.client.Database("db", nil).Collection("moderationRecords")
	_, err := coll.InsertOne(ctx, record)
	return err
}
