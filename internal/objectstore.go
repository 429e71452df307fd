package internal

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectStorage is the boundary to the image store. Upload returns an
// opaque reference the restaurant document keeps in cover/images.
type ObjectStorage interface {
	Upload(ctx context.Context, path, filename string, body io.Reader) (string, error)

	DeleteOne(ctx context.Context, reference string) error

	DeleteMany(ctx context.Context, path string, references []string) error
}

// gridFSStorage keeps images in a GridFS bucket alongside the documents.
type gridFSStorage struct {
	bucket *gridfs.Bucket
}

func NewGridFSStorage(client *mongo.Client) (ObjectStorage, error) {
	bucket, err := gridfs.NewBucket(
		client.Database("db", nil),
		options.GridFSBucket().SetName("restaurantImages"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open GridFS bucket: %w", err)
	}
	return &gridFSStorage{bucket: bucket}, nil
}

func (s *gridFSStorage) Upload(ctx context.Context, path, filename string, body io.Reader) (string, error) {

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}

	fileID, err := s.bucket.UploadFromStream(fmt.Sprintf("%s/%s", path, filename), body)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	return fileID.Hex(), nil
}

func (s *gridFSStorage) DeleteOne(ctx context.Context, reference string) error {

	fileID, err := primitive.ObjectIDFromHex(reference)
	if err != nil {
		return fmt.Errorf("invalid object reference %q: %w", reference, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}

	if err := s.bucket.Delete(fileID); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", reference, err)
	}
	return nil
}

func (s *gridFSStorage) DeleteMany(ctx context.Context, path string, references []string) error {
	for _, reference := range references {
		if err := s.DeleteOne(ctx, reference); err != nil {
			return err
		}
	}
	return nil
}
