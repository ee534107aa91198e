package client

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse mobile numbers without a country code.
const DefaultPhoneRegion = "US"

// MaxPhotoBytes is the largest photo the API accepts.
const MaxPhotoBytes = 1 << 20

const (
	msgStudentRequired = "Admission number, name, class, and section are required"
	msgPhotoType       = "Please upload a PNG or JPEG image"
	msgPhotoSize       = "Photo must be less than 1MB"
)

// NewClass is the payload of POST /addclasses
type NewClass struct {
	Name    string `json:"name" form:"name"`
	Section string `json:"section" form:"section"`
}

// Validate will validate the payload
func (c NewClass) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error("Class name is required")),
		validation.Field(&c.Section, validation.Required.Error("Section is required")),
	)
}

// NewStudent is the form sent to POST /addstudents
type NewStudent struct {
	AdmissionNo string `json:"admissionNo" form:"admissionNo"`
	Name        string `json:"name" form:"name"`
	Age         int    `json:"age" form:"age"`
	Class       string `json:"class" form:"class"`
	Section     string `json:"section" form:"section"`
}

// Validate will validate the payload
func (s NewStudent) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.AdmissionNo, validation.Required.Error(msgStudentRequired)),
		validation.Field(&s.Name, validation.Required.Error(msgStudentRequired)),
		validation.Field(&s.Class, validation.Required.Error(msgStudentRequired)),
		validation.Field(&s.Section, validation.Required.Error(msgStudentRequired)),
		validation.Field(&s.Age, validation.Min(0).Error("Age must be a positive number")),
	)
}

// TeacherInput is the form used to add or update a teacher
type TeacherInput struct {
	Name     string `json:"name" form:"name"`
	MobileNo string `json:"mobileNo" form:"mobileNo"`
	Email    string `json:"email" form:"email"`
}

// Validate checks the input, parsing MobileNo in DefaultPhoneRegion.
func (t TeacherInput) Validate() error {
	return t.validate(DefaultPhoneRegion)
}

func (t TeacherInput) validate(region string) error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required.Error("Name is required")),
		validation.Field(&t.Email, validation.Required.Error("Email is required"), is.Email.Error("Invalid email format")),
		validation.Field(&t.MobileNo, validation.By(phoneNumberRule(region))),
	)
}

func phoneNumberRule(region string) validation.RuleFunc {
	return func(value interface{}) error {
		number, _ := value.(string)
		if strings.TrimSpace(number) == "" {
			return nil
		}
		parsed, err := phonenumbers.Parse(number, region)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return errors.New("Invalid mobile number")
		}
		return nil
	}
}

// NormalizeMobile formats a valid number as E.164, returning it unchanged
// when it cannot be parsed.
func NormalizeMobile(number, region string) string {
	if strings.TrimSpace(number) == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return number
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Photo is an uploaded image.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaType returns ContentType without parameters, sniffing Data when unset.
func (p *Photo) MediaType() string {
	contentType := p.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(p.Data)
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// Validate accepts PNG or JPEG images up to MaxPhotoBytes. A nil photo is valid.
func (p *Photo) Validate() error {
	if p == nil {
		return nil
	}
	return validation.Errors{
		"contentType": validation.Validate(p.MediaType(), validation.In("image/png", "image/jpeg").Error(msgPhotoType)),
		"size":        validation.Validate(len(p.Data), validation.Max(MaxPhotoBytes).Error(msgPhotoSize)),
	}.Filter()
}

var fieldOrder = []string{
	"admissionNo", "name", "class", "section", "age",
	"email", "mobileNo", "contentType", "size",
}

// firstValidationError picks one message from a validation.Errors in form
// order, so views show a single line like the original forms did.
func firstValidationError(err error) string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return ""
	}

	for _, field := range fieldOrder {
		if fieldErr, ok := verrs[field]; ok && fieldErr != nil {
			return fieldErr.Error()
		}
	}

	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if verrs[k] != nil {
			return verrs[k].Error()
		}
	}
	return ""
}

// ValidationMessage returns the first display message of a validation error.
func ValidationMessage(err error) string {
	if msg := firstValidationError(err); msg != "" {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
