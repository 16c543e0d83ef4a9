package validator

import (
	stdErrors "errors"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// TagMeetingURL validates an absolute http(s) meeting link
const TagMeetingURL = "meetingurl"

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the custom rules registered
func New() *CustomValidator {
	v := validator.New()
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation(TagMeetingURL, validateMeetingURL)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func validateMeetingURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HasTag reports whether err contains a failure for the given validation tag
func HasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !stdErrors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
