package internal

import "errors"

// Domain errors surfaced to the caller. Infrastructure failures are
// wrapped and propagated separately; they never alias these sentinels.
var (
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrRequestNotFound     = errors.New("modification request not found")
	ErrDuplicateRestaurant = errors.New("restaurant already exists")
	ErrAlreadyApproved     = errors.New("restaurant is already approved")
	ErrNotApproved         = errors.New("restaurant status should be approved")
	ErrAlreadyVerified     = errors.New("restaurant is already verified")
	ErrInvalidOTP          = errors.New("invalid OTP")
	ErrTooManyImages       = errors.New("only 10 images are allowed")
	ErrUnauthorized        = errors.New("user is not authorized")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrRestaurantNotFound) || errors.Is(err, ErrRequestNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRestaurant)
}

// IsPrecondition reports whether the caller violated an invariant it can
// correct and retry.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrAlreadyApproved) ||
		errors.Is(err, ErrNotApproved) ||
		errors.Is(err, ErrAlreadyVerified) ||
		errors.Is(err, ErrInvalidOTP) ||
		errors.Is(err, ErrTooManyImages)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
