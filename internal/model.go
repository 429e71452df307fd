package internal

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dbStatus string

const (
	Status_PENDING  dbStatus = "PENDING"
	Status_APPROVED dbStatus = "APPROVED"

	// REJECTED appears only in decisions and moderation records. A
	// rejected listing is removed, never stored with this status.
	Status_REJECTED dbStatus = "REJECTED"
)

type dbRecordType string

const (
	RecordType_LISTING dbRecordType = "LISTING"
	RecordType_MODIFY  dbRecordType = "MODIFY"
)

type Role string

const (
	Role_USER  Role = "USER"
	Role_ADMIN Role = "ADMIN"
)

// Actor is the already-authenticated caller identity. Token validation
// happens upstream; the service only decides what the actor may do.
type Actor struct {
	ID   string
	Role Role
}

const maxImages = 10

type dbRestaurant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Name        string             `bson:"name"`
	TaxID       string             `bson:"taxId"`
	Slug        string             `bson:"slug"`
	Cuisine     []string           `bson:"cuisine"`
	Address     string             `bson:"address"`
	Location    *dbLocation        `bson:"location,omitempty"`
	PhoneNumber string             `bson:"phoneNumber"`
	Cover       string             `bson:"cover,omitempty"`
	Images      []string           `bson:"images"`
	Status      dbStatus           `bson:"status"`
	IsVerified  bool               `bson:"isVerified"`
	IsDeleted   bool               `bson:"isDeleted"`
	Version     int64              `bson:"version"`
	CreateTime  time.Time          `bson:"createTime"`
	UpdateTime  time.Time          `bson:"updateTime"`
}

// GeoJSON point, longitude first.
type dbLocation struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// dbModificationRequest shadows unapproved edits to the protected fields
// of an APPROVED listing. The primary record stays authoritative until an
// admin approves the request. At most one request exists per restaurant.
type dbModificationRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RestaurantID string             `bson:"restaurantId"`
	UserID       string             `bson:"userId"`
	Name         string             `bson:"name"`
	TaxID        string             `bson:"taxId"`
	CreateTime   time.Time          `bson:"createTime"`
}

// dbModerationRecord is the append-only audit trail of admin decisions.
type dbModerationRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AdminID      string             `bson:"adminId"`
	RestaurantID string             `bson:"restaurantId"`
	Status       dbStatus           `bson:"status"`
	Type         dbRecordType       `bson:"type"`
	Remarks      string             `bson:"remarks"`
	CreateTime   time.Time          `bson:"createTime"`
}

// RestaurantInput is the full editable field set accepted by Create and
// Update. Validation rules are registered in validate.go.
type RestaurantInput struct {
	Name        string   `json:"name"`
	TaxID       string   `json:"taxId"`
	Cuisine     []string `json:"cuisine"`
	Address     string   `json:"address"`
	Longitude   float64  `json:"longitude"`
	Latitude    float64  `json:"latitude"`
	PhoneNumber string   `json:"phoneNumber"`
}

func (in *RestaurantInput) location() *dbLocation {
	return &dbLocation{
		Type:        "Point",
		Coordinates: []float64{in.Longitude, in.Latitude},
	}
}

// Decision is an admin verdict on a pending listing or on a pending
// modification request.
type Decision struct {
	Status  dbStatus `json:"status"`
	Remarks string   `json:"remarks"`
}

// ImageUpload is one file handed to the object store.
type ImageUpload struct {
	Name string
	Body io.Reader
}

// restaurantPatch is the set of fields a single mutation may rewrite.
// Nil pointers are left untouched; every applied patch bumps the record
// version.
type restaurantPatch struct {
	Name        *string
	TaxID       *string
	Slug        *string
	Cuisine     []string
	Address     *string
	Location    *dbLocation
	PhoneNumber *string
	Cover       *string
	Images      []string
	Status      *dbStatus
	IsVerified  *bool
	IsDeleted   *bool
}

func ptr[T any](v T) *T { return &v }
