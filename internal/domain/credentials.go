package domain

import (
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted by the sign-in form.
const MinPasswordLength = 6

// emailRe accepts local@domain.tld shaped addresses without whitespace.
var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Credentials are the transient values submitted by the sign-in form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validation holds the independent outcome of both credential checks.
type Validation struct {
	Valid         bool `json:"valid"`
	EmailError    bool `json:"email_error"`
	PasswordError bool `json:"password_error"`
}

// Validate checks the email shape and password length.
func Validate(email, password string) Validation {
	v := Validation{
		EmailError:    email == "" || !emailRe.MatchString(email),
		PasswordError: utf8.RuneCountInString(password) < MinPasswordLength,
	}
	v.Valid = !v.EmailError && !v.PasswordError
	return v
}

// Validate checks the credentials.
func (c Credentials) Validate() Validation {
	return Validate(c.Email, c.Password)
}
