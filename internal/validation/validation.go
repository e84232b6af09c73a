// Package validation holds the pure field checks applied to complaint
// submissions before any classification or storage work happens.
package validation

import "regexp"

var (
	emailPattern  = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
)

const (
	MinAge = 1
	MaxAge = 150
)

// IsValidEmail reports whether s looks like local@domain.tld. No network or
// DNS check is performed.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidMobile reports whether s is exactly 10 decimal digits with no
// separators.
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// Submission is the raw user input of a complaint form.
type Submission struct {
	Name         string
	Age          int
	MobileNumber string
	EmailID      string
	Complaint    string
}

// ValidateSubmission returns a field-to-message map of everything wrong with
// the submission. An empty map means the submission is acceptable.
func ValidateSubmission(s Submission) map[string]string {
	problems := make(map[string]string)

	if s.Name == "" {
		problems["name"] = "name is required"
	}
	if s.Age < MinAge || s.Age > MaxAge {
		problems["age"] = "age must be between 1 and 150"
	}
	if !IsValidMobile(s.MobileNumber) {
		problems["mobile_number"] = "mobile number must be exactly 10 digits"
	}
	if !IsValidEmail(s.EmailID) {
		problems["email_id"] = "invalid email address"
	}
	if s.Complaint == "" {
		problems["complaint"] = "complaint text is required"
	}

	return problems
}
