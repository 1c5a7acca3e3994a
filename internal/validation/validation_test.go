package validation_test

import (
	"testing"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/internal/validation"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type request struct {
	Name    string `json:"templateName" validate:"required,max=10"`
	Country string `json:"countryCode" validate:"omitempty,iso3166_1_alpha2"`
	Data    inner  `json:"userData"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     request
		field   string
		message string
	}{
		{"valid", request{Name: "sig", Country: "FR"}, "", ""},
		{"missing", request{}, "templateName", "is required"},
		{"too long", request{Name: "a-very-long-name"}, "templateName", "must be at most 10 characters"},
		{"country", request{Name: "sig", Country: "XX"}, "countryCode", "must be a two-letter country code"},
		{"nested", request{Name: "sig", Data: inner{Email: "nope"}}, "userData.email", "must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(tt.req)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tt.field, ve.Field)
			require.Equal(t, tt.message, ve.Message)
		})
	}
}
