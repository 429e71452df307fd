package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RestaurantStorage interface {

	// Restaurant returns a non-deleted restaurant by id.
	Restaurant(ctx context.Context, restaurantID string) (*dbRestaurant, error)

	RestaurantBySlug(ctx context.Context, slug string) (*dbRestaurant, error)

	// FindDuplicate reports whether a non-deleted restaurant other than
	// excludeID already uses the given name or tax id.
	FindDuplicate(ctx context.Context, name, taxID, excludeID string) (bool, error)

	ApprovedSlugs(ctx context.Context) ([]string, error)

	Approved(ctx context.Context, offset, limit int64) ([]*dbRestaurant, error)

	ApprovedCount(ctx context.Context) (int64, error)

	Pending(ctx context.Context) ([]*dbRestaurant, error)

	ByUser(ctx context.Context, userID string) ([]*dbRestaurant, error)

	All(ctx context.Context) ([]*dbRestaurant, error)

	// Create inserts a new restaurant and returns its id.
	Create(ctx context.Context, restaurant *dbRestaurant) (string, error)

	// Update applies the patch in a single document write, bumps the
	// version and returns the updated snapshot.
	Update(ctx context.Context, restaurantID string, patch *restaurantPatch) (*dbRestaurant, error)

	// Delete removes the record entirely (hard delete).
	Delete(ctx context.Context, restaurantID string) error
}

type restaurantStorage struct {
	client *mongo.Client
}

func NewRestaurantStorage(client *mongo.Client) RestaurantStorage {
	return &restaurantStorage{client: client}
}

func (s *restaurantStorage) coll() *mongo.Collection {
	return s.client.Database("db", nil).Collection("restaurants")
}

func (s *restaurantStorage) Restaurant(ctx context.Context, restaurantID string) (*dbRestaurant, error) {

	ID, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}

	filter := bson.M{"_id": ID, "isDeleted": false}

	var restaurant dbRestaurant
	if err := s.coll().FindOne(ctx, filter).Decode(&restaurant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	return &restaurant, nil
}

func (s *restaurantStorage) RestaurantBySlug(ctx context.Context, slug string) (*dbRestaurant, error) {

	filter := bson.M{"slug": slug, "isDeleted": false}

	var restaurant dbRestaurant
	if err := s.coll().FindOne(ctx, filter).Decode(&restaurant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	return &restaurant, nil
}

func (s *restaurantStorage) FindDuplicate(ctx context.Context, name, taxID, excludeID string) (bool, error) {

	filter := bson.M{
		"$or":       bson.A{bson.M{"name": name}, bson.M{"taxId": taxID}},
		"isDeleted": false,
	}

	if excludeID != "" {
		ID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("invalid restaurant id %q: %w", excludeID, err)
		}
		filter["_id"] = bson.M{"$ne": ID}
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

func (s *restaurantStorage) ApprovedSlugs(ctx context.Context) ([]string, error) {

	filter := bson.M{"status": Status_APPROVED, "isDeleted": false}
	opts := options.Find().SetProjection(bson.M{"slug": 1})

	cursor, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slugs []string
	for cursor.Next(ctx) {
		var restaurant dbRestaurant
		if err := cursor.Decode(&restaurant); err != nil {
			return nil, err
		}
		slugs = append(slugs, restaurant.Slug)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return slugs, nil
}

func (s *restaurantStorage) Approved(ctx context.Context, offset, limit int64) ([]*dbRestaurant, error) {

	filter := bson.M{"status": Status_APPROVED, "isDeleted": false}
	opts := options.Find().SetSkip(offset).SetLimit(limit)

	return s.find(ctx, filter, opts)
}

func (s *restaurantStorage) ApprovedCount(ctx context.Context) (int64, error) {
	return s.coll().CountDocuments(ctx, bson.M{"status": Status_APPROVED, "isDeleted": false})
}

func (s *restaurantStorage) Pending(ctx context.Context) ([]*dbRestaurant, error) {
	return s.find(ctx, bson.M{"status": Status_PENDING, "isDeleted": false})
}

func (s *restaurantStorage) ByUser(ctx context.Context, userID string) ([]*dbRestaurant, error) {
	return s.find(ctx, bson.M{"userId": userID, "isDeleted": false})
}

func (s *restaurantStorage) All(ctx context.Context) ([]*dbRestaurant, error) {
	return s.find(ctx, bson.M{})
}

func (s *restaurantStorage) find(ctx context.Context, filter bson.M,
	opts ...*options.FindOptions) ([]*dbRestaurant, error) {

	cursor, err := s.coll().Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var restaurants []*dbRestaurant
	for cursor.Next(ctx) {
		var restaurant dbRestaurant
		if err := cursor.Decode(&restaurant); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, &restaurant)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (s *restaurantStorage) Create(ctx context.Context, restaurant *dbRestaurant) (string, error) {

	now := time.Now()
	restaurant.CreateTime = now
	restaurant.UpdateTime = now

	res, err := s.coll().InsertOne(ctx, restaurant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateRestaurant
		}
		return "", err
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("inserted ID is not primitive.ObjectID")
	}
	return insertedID.Hex(), nil
}

func (s *restaurantStorage) Update(ctx context.Context, restaurantID string,
	patch *restaurantPatch) (*dbRestaurant, error) {

	ID, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}

	set := bson.M{"updateTime": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.TaxID != nil {
		set["taxId"] = *patch.TaxID
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Cuisine != nil {
		set["cuisine"] = patch.Cuisine
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Location != nil {
		set["location"] = patch.Location
	}
	if patch.PhoneNumber != nil {
		set["phoneNumber"] = *patch.PhoneNumber
	}
	if patch.Cover != nil {
		set["cover"] = *patch.Cover
	}
	if patch.Images != nil {
		set["images"] = patch.Images
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.IsVerified != nil {
		set["isVerified"] = *patch.IsVerified
	}
	if patch.IsDeleted != nil {
		set["isDeleted"] = *patch.IsDeleted
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated dbRestaurant
	err = s.coll().FindOneAndUpdate(ctx, bson.M{"_id": ID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateRestaurant
		}
		return nil, err
	}

	return &updated, nil
}

func (s *restaurantStorage) Delete(ctx context.Context, restaurantID string) error {

	ID, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return ErrRestaurantNotFound
	}

	_, err = s.coll().DeleteOne(ctx, bson.M{"_id": ID})
	return err
}
