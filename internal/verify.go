package internal

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/dineease/restaurantservice/pkg/cache"
)

// otpTTL is the issuance window for a verification code.
const otpTTL = 120 * time.Second

// CodeGenerator produces a one-time code and hands it to the delivery
// transport (SMS). How the code reaches the owner is outside this
// service; only the code's lifetime in the cache is owned here.
type CodeGenerator interface {
	GenerateCode(ctx context.Context) (string, error)
}

// VerificationService owns the OTP lifecycle for restaurant phone
// verification, keyed by restaurant id in the TTL cache.
type VerificationService struct {
	storage RestaurantStorage
	cache   *cache.Cache
	codes   CodeGenerator
}

func NewVerificationService(storage RestaurantStorage, c *cache.Cache,
	codes CodeGenerator) *VerificationService {

	return &VerificationService{
		storage: storage,
		cache:   c,
		codes:   codes,
	}
}

// GenerateOTP issues a verification code for the restaurant unless one
// is still live, and returns the remaining window. The code itself is
// delivered out of band and never returned to the caller.
func (x *VerificationService) GenerateOTP(ctx context.Context, actor Actor,
	restaurantID string) (time.Duration, error) {

	found, err := x.storage.Restaurant(ctx, restaurantID)
	if err != nil {
		return 0, err
	}

	if found.UserID != actor.ID {
		return 0, ErrUnauthorized
	}

	if found.IsVerified {
		return 0, ErrAlreadyVerified
	}

	_, ttl, err := cache.Fetch(ctx, x.cache, restaurantID, otpTTL,
		func(ctx context.Context) (string, error) {
			return x.codes.GenerateCode(ctx)
		})
	if err != nil {
		return 0, err
	}

	return ttl, nil
}

// VerifyOTP checks the submitted code against the cached one. A cache
// miss and a mismatch are indistinguishable to the caller, so a client
// cannot probe whether a code was ever issued. On success the restaurant
// is marked verified and the entry removed.
func (x *VerificationService) VerifyOTP(ctx context.Context, actor Actor,
	restaurantID, code string) error {

	found, err := x.storage.Restaurant(ctx, restaurantID)
	if err != nil {
		return err
	}

	if found.UserID != actor.ID {
		return ErrUnauthorized
	}

	if found.IsVerified {
		return ErrAlreadyVerified
	}

	var cached string
	ok, err := x.cache.Get(ctx, restaurantID, &cached)
	if err != nil {
		return err
	}

	if !ok || cached != code {
		return ErrInvalidOTP
	}

	if _, err := x.storage.Update(ctx, restaurantID, &restaurantPatch{
		IsVerified: ptr(true),
	}); err != nil {
		return err
	}

	return x.cache.Delete(ctx, restaurantID)
}

const otpDigits = "0123456789"

// randomCodeGenerator is the default transport-side generator: a
// 6-digit numeric code from crypto/rand.
type randomCodeGenerator struct {
	length int
}

func NewRandomCodeGenerator() CodeGenerator {
	return &randomCodeGenerator{length: 6}
}

func (g *randomCodeGenerator) GenerateCode(ctx context.Context) (string, error) {

	code := make([]byte, g.length)
	charset := big.NewInt(int64(len(otpDigits)))

	for i := range code {
		n, err := rand.Int(rand.Reader, charset)
		if err != nil {
			return "", err
		}
		code[i] = otpDigits[n.Int64()]
	}

	return string(code), nil
}
