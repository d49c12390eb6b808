package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     Validation
	}{
		{name: "bad email", email: "bad-email", password: "123456", want: Validation{EmailError: true}},
		{name: "short password", email: "a@b.com", password: "12345", want: Validation{PasswordError: true}},
		{name: "valid", email: "a@b.com", password: "123456", want: Validation{Valid: true}},
		{name: "both invalid", email: "", password: "", want: Validation{EmailError: true, PasswordError: true}},
		{name: "missing tld", email: "a@b", password: "secret1", want: Validation{EmailError: true}},
		{name: "whitespace in email", email: "a b@c.com", password: "secret1", want: Validation{EmailError: true}},
		{name: "multibyte password", email: "ana@example.org", password: "ñññññ", want: Validation{PasswordError: true}},
		{name: "multibyte password long enough", email: "ana@example.org", password: "ññññññ", want: Validation{Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.email, tt.password))
		})
	}
}

func TestCredentialsValidate(t *testing.T) {
	c := Credentials{Email: "a@b.com", Password: "123456"}
	assert.True(t, c.Validate().Valid)
}
