package internal

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ModificationStorage interface {

	// Request returns the pending modification request for a restaurant.
	Request(ctx context.Context, restaurantID string) (*dbModificationRequest, error)

	// FindDuplicate reports whether any pending request other than the
	// one for excludeRestaurantID already claims the name or tax id.
	FindDuplicate(ctx context.Context, name, taxID, excludeRestaurantID string) (bool, error)

	// Upsert creates or replaces the single request for a restaurant.
	Upsert(ctx context.Context, request *dbModificationRequest) error

	Delete(ctx context.Context, restaurantID string) error
}

type modificationStorage struct {
	client *mongo.Client
}

func NewModificationStorage(client *mongo.Client) ModificationStorage {
	return &modificationStorage{client: client}
}

func (s *modificationStorage) coll() *mongo.Collection {
	return s.client.Database("db", nil).Collection("modificationRequests")
}

func (s *modificationStorage) Request(ctx context.Context, restaurantID string) (*dbModificationRequest, error) {

	var request dbModificationRequest
	err := s.coll().FindOne(ctx, bson.M{"restaurantId": restaurantID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return &request, nil
}

func (s *modificationStorage) FindDuplicate(ctx context.Context, name, taxID,
	excludeRestaurantID string) (bool, error) {

	filter := bson.M{"$or": bson.A{bson.M{"name": name}, bson.M{"taxId": taxID}}}
	if excludeRestaurantID != "" {
		filter["restaurantId"] = bson.M{"$ne": excludeRestaurantID}
	}

	err := s.coll().FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *modificationStorage) Upsert(ctx context.Context, request *dbModificationRequest) error {

	request.CreateTime = time.Now()

	filter := bson.M{"restaurantId": request.RestaurantID}
	opts := options.Replace().SetUpsert(true)

	_, err := s.coll().ReplaceOne(ctx, filter, request, opts)
	return err
}

func (s *modificationStorage) Delete(ctx context.Context, restaurantID string) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{"restaurantId": restaurantID})
	return err
}
