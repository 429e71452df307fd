package internal

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dineease/restaurantservice/pkg/cache"
)

func newVerificationService(t *testing.T) (*VerificationService, *MockRestaurantStorage,
	*MockCodeGenerator, *miniredis.Miniredis) {

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	storage := new(MockRestaurantStorage)
	codes := new(MockCodeGenerator)
	sv := NewVerificationService(storage, cache.New(rdb), codes)
	return sv, storage, codes, mr
}

func unverifiedRestaurant() *dbRestaurant {
	r := approvedRestaurant()
	r.IsVerified = false
	return r
}

func TestGenerateOTP_IssuesCodeForFullWindow(t *testing.T) {
	sv, storage, codes, mr := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)
	codes.On("GenerateCode", mock.Anything).Return("483920", nil)

	ttl, err := sv.GenerateOTP(context.Background(), owner, id)

	assert.NoError(t, err)
	assert.Equal(t, 120*time.Second, ttl)
	assert.True(t, mr.Exists(id))
}

func TestGenerateOTP_ReusesLiveCode(t *testing.T) {
	sv, storage, codes, mr := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)
	codes.On("GenerateCode", mock.Anything).Return("483920", nil)

	_, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)

	mr.FastForward(40 * time.Second)

	// The second request within the window returns the remaining
	// lifetime and does not mint a new code.
	ttl, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)
	assert.Equal(t, 80*time.Second, ttl)
	codes.AssertNumberOfCalls(t, "GenerateCode", 1)
}

func TestGenerateOTP_AfterExpiryMintsNewCode(t *testing.T) {
	sv, storage, codes, mr := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)
	codes.On("GenerateCode", mock.Anything).Return("483920", nil)

	_, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)

	mr.FastForward(121 * time.Second)

	ttl, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)
	assert.Equal(t, 120*time.Second, ttl)
	codes.AssertNumberOfCalls(t, "GenerateCode", 2)
}

func TestGenerateOTP_AlreadyVerified(t *testing.T) {
	sv, storage, codes, _ := newVerificationService(t)
	found := approvedRestaurant()
	found.IsVerified = true
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)

	_, err := sv.GenerateOTP(context.Background(), owner, id)

	assert.ErrorIs(t, err, ErrAlreadyVerified)
	codes.AssertNotCalled(t, "GenerateCode", mock.Anything)
}

func TestGenerateOTP_Unauthorized(t *testing.T) {
	sv, storage, _, _ := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)

	_, err := sv.GenerateOTP(context.Background(), Actor{ID: "intruder", Role: Role_USER}, id)

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyOTP_WrongCodeLeavesEntryIntact(t *testing.T) {
	sv, storage, codes, mr := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)
	codes.On("GenerateCode", mock.Anything).Return("483920", nil)

	_, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)

	err = sv.VerifyOTP(context.Background(), owner, id, "000000")

	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.True(t, mr.Exists(id))
	storage.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_NoIssuedCode(t *testing.T) {
	sv, storage, _, _ := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	storage.On("Restaurant", mock.Anything, id).Return(found, nil)

	// Without an issued code the caller sees the same error as a
	// mismatch, so probing for issuance is not possible.
	err := sv.VerifyOTP(context.Background(), owner, id, "483920")

	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_Scenario(t *testing.T) {
	sv, storage, codes, mr := newVerificationService(t)
	found := unverifiedRestaurant()
	id := found.ID.Hex()

	verified := approvedRestaurant()
	verified.ID = found.ID
	verified.IsVerified = true

	storage.On("Restaurant", mock.Anything, id).Return(found, nil).Times(3)
	codes.On("GenerateCode", mock.Anything).Return("483920", nil)

	ttl, err := sv.GenerateOTP(context.Background(), owner, id)
	assert.NoError(t, err)
	assert.Equal(t, 120*time.Second, ttl)

	err = sv.VerifyOTP(context.Background(), owner, id, "111111")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	storage.On("Update", mock.Anything, id, mock.MatchedBy(func(p *restaurantPatch) bool {
		return p.IsVerified != nil && *p.IsVerified
	})).Return(verified, nil)

	err = sv.VerifyOTP(context.Background(), owner, id, "483920")
	assert.NoError(t, err)
	assert.False(t, mr.Exists(id))

	// The restaurant is verified now, so a further code request fails.
	storage.On("Restaurant", mock.Anything, id).Return(verified, nil)

	_, err = sv.GenerateOTP(context.Background(), owner, id)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	codes.AssertNumberOfCalls(t, "GenerateCode", 1)
}

func TestRandomCodeGenerator(t *testing.T) {
	g := NewRandomCodeGenerator()

	code, err := g.GenerateCode(context.Background())

	assert.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}
