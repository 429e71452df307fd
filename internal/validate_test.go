package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRestaurantInput(t *testing.T) {
	SetupValidator()

	tests := []struct {
		name    string
		mutate  func(in *RestaurantInput)
		wantErr string
	}{
		{
			name:   "valid input",
			mutate: func(in *RestaurantInput) {},
		},
		{
			name:    "missing name",
			mutate:  func(in *RestaurantInput) { in.Name = "" },
			wantErr: "Name is required",
		},
		{
			name:    "name too short",
			mutate:  func(in *RestaurantInput) { in.Name = "ab" },
			wantErr: "Name must be at least 3",
		},
		{
			name:    "tax id too short",
			mutate:  func(in *RestaurantInput) { in.TaxID = "123" },
			wantErr: "TaxID must be at least 5",
		},
		{
			name:    "missing cuisine",
			mutate:  func(in *RestaurantInput) { in.Cuisine = nil },
			wantErr: "Cuisine is required",
		},
		{
			name: "too many cuisines",
			mutate: func(in *RestaurantInput) {
				in.Cuisine = []string{"thai", "lao", "viet", "khmer", "burmese", "malay"}
			},
			wantErr: "Cuisine must be at most 5",
		},
		{
			name:    "missing address",
			mutate:  func(in *RestaurantInput) { in.Address = "" },
			wantErr: "Address is required",
		},
		{
			name:    "longitude out of range",
			mutate:  func(in *RestaurantInput) { in.Longitude = 200 },
			wantErr: "Longitude must be a valid longitude",
		},
		{
			name:    "latitude out of range",
			mutate:  func(in *RestaurantInput) { in.Latitude = -95 },
			wantErr: "Latitude must be a valid latitude",
		},
		{
			name:    "phone with letters",
			mutate:  func(in *RestaurantInput) { in.PhoneNumber = "+66x1234567" },
			wantErr: "PhoneNumber must be a valid phone number format",
		},
		{
			name:    "phone too short",
			mutate:  func(in *RestaurantInput) { in.PhoneNumber = "+12345" },
			wantErr: "PhoneNumber must be a valid phone number format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)

			err := ValidateRestaurantInput(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateCollectsAllFieldErrors(t *testing.T) {
	SetupValidator()

	in := validInput()
	in.Name = ""
	in.PhoneNumber = "bogus"

	err := ValidateRestaurantInput(in)

	assert.ErrorContains(t, err, "Name is required")
	assert.ErrorContains(t, err, "PhoneNumber must be a valid phone number format")
}
