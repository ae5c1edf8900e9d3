// Package contact accepts contact form submissions.
package contact

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is the JSON body of POST /api/contact.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	// Locale is the page locale the form was sent from.
	Locale string `json:"locale,omitempty"`
}

// Record is an accepted submission.
type Record struct {
	ID         string
	Submission Submission
	ReceivedAt time.Time
	RemoteIP   string
	UserAgent  string
}

// MissingFieldsError lists the required fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrInvalidEmail is returned when the email address is not shaped like one.
var ErrInvalidEmail = errors.New("invalid email format")

// Normalize trims every field.
func (s Submission) Normalize() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Company = strings.TrimSpace(s.Company)
	s.Locale = strings.TrimSpace(s.Locale)
	return s
}

// Validate reports missing required fields first, then a malformed email.
// It expects a normalized submission.
func (s Submission) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Email, validation.Required),
		validation.Field(&s.Subject, validation.Required),
		validation.Field(&s.Message, validation.Required),
	)
	if err != nil {
		var errs validation.Errors
		if !errors.As(err, &errs) {
			return err
		}
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return &MissingFieldsError{Fields: fields}
	}
	if err := validation.Validate(s.Email, validation.Match(emailPattern)); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
