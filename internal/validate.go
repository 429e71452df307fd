package internal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type fieldErrs []fieldErr

func (f fieldErrs) Error() string {
	var s []string
	for _, err := range f {
		s = append(s, err.Error())
	}
	return strings.Join(s, ", ")
}

type fieldErr struct {
	Field string
	Msg   string
}

func (f fieldErr) Error() string {
	return fmt.Sprintf("%s %s", f.Field, f.Msg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func SetupValidator() {
	validate.RegisterStructValidationMapRules(map[string]string{
		"Name":        "required,min=3,max=50",
		"TaxID":       "required,min=5,max=20",
		"Cuisine":     "required,max=5,dive,min=2",
		"Address":     "required,max=200",
		"Longitude":   "longitude",
		"Latitude":    "latitude",
		"PhoneNumber": "required,vfphone",
	}, RestaurantInput{})

	// prefix vf = validate format
	validate.RegisterValidation("vfphone", validatePhone)
}

func ValidateRestaurantInput(in *RestaurantInput) error {
	if err := validate.Struct(in); err != nil {

		var valErrs validator.ValidationErrors
		if !errors.As(err, &valErrs) {
			return err
		}

		var errs fieldErrs
		for _, valErr := range valErrs {
			errs = append(errs, buildFieldErr(valErr))
		}
		return errs
	}
	return nil
}

func buildFieldErr(f validator.FieldError) fieldErr {
	switch f.Tag() {
	case "required":
		return fieldErr{Field: f.Field(), Msg: "is required"}
	case "vfphone":
		return fieldErr{Field: f.Field(), Msg: "must be a valid phone number format"}
	case "min":
		return fieldErr{Field: f.Field(), Msg: fmt.Sprintf("must be at least %s", f.Param())}
	case "max":
		return fieldErr{Field: f.Field(), Msg: fmt.Sprintf("must be at most %s", f.Param())}
	case "longitude":
		return fieldErr{Field: f.Field(), Msg: "must be a valid longitude"}
	case "latitude":
		return fieldErr{Field: f.Field(), Msg: "must be a valid latitude"}
	default:
		return fieldErr{Field: f.Field(), Msg: fmt.Sprintf("invalid value tag %s", f.Tag())}
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	// E.164-ish: optional plus, 7 to 15 digits.
	return regexp.MustCompile(`^\+?[0-9]{7,15}$`).MatchString(fl.Field().String())
}
