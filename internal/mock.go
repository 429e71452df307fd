package internal

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockRestaurantStorage struct {
	mock.Mock
}

func (m *MockRestaurantStorage) Restaurant(ctx context.Context, restaurantID string) (*dbRestaurant, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) RestaurantBySlug(ctx context.Context, slug string) (*dbRestaurant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) FindDuplicate(ctx context.Context, name, taxID, excludeID string) (bool, error) {
	args := m.Called(ctx, name, taxID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRestaurantStorage) ApprovedSlugs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRestaurantStorage) Approved(ctx context.Context, offset, limit int64) ([]*dbRestaurant, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) ApprovedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRestaurantStorage) Pending(ctx context.Context) ([]*dbRestaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) ByUser(ctx context.Context, userID string) ([]*dbRestaurant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) All(ctx context.Context) ([]*dbRestaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) Create(ctx context.Context, restaurant *dbRestaurant) (string, error) {
	args := m.Called(ctx, restaurant)
	return args.String(0), args.Error(1)
}

func (m *MockRestaurantStorage) Update(ctx context.Context, restaurantID string, patch *restaurantPatch) (*dbRestaurant, error) {
	args := m.Called(ctx, restaurantID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbRestaurant), args.Error(1)
}

func (m *MockRestaurantStorage) Delete(ctx context.Context, restaurantID string) error {
	args := m.Called(ctx, restaurantID)
	return args.Error(0)
}

type MockModificationStorage struct {
	mock.Mock
}

func (m *MockModificationStorage) Request(ctx context.Context, restaurantID string) (*dbModificationRequest, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbModificationRequest), args.Error(1)
}

func (m *MockModificationStorage) FindDuplicate(ctx context.Context, name, taxID, excludeRestaurantID string) (bool, error) {
	args := m.Called(ctx, name, taxID, excludeRestaurantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockModificationStorage) Upsert(ctx context.Context, request *dbModificationRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockModificationStorage) Delete(ctx context.Context, restaurantID string) error {
	args := m.Called(ctx, restaurantID)
	return args.Error(0)
}

type MockModerationRecorder struct {
	mock.Mock
}

func (m *MockModerationRecorder) CreateRecord(ctx context.Context, record *dbModerationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, path, filename string, body io.Reader) (string, error) {
	args := m.Called(ctx, path, filename, body)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) DeleteOne(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func (m *MockObjectStorage) DeleteMany(ctx context.Context, path string, references []string) error {
	args := m.Called(ctx, path, references)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, subject string, payload any) {
	m.Called(ctx, subject, payload)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) GenerateCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
