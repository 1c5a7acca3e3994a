// Package signature holds the signature form model and turns it into preview
// markup, a standalone HTML document and a PNG image.
package signature

import (
	"strings"

	"github.com/jrsteele09/signature-studio/internal/validation"
	"github.com/jrsteele09/signature-studio/sessions"
)

// FormState is the user-editable signature form.
type FormState struct {
	FirstName   string `json:"firstName" validate:"max=80"`
	LastName    string `json:"lastName" validate:"max=80"`
	JobTitle    string `json:"jobTitle" validate:"max=120"`
	Phone       string `json:"phone" validate:"max=32"`
	CountryCode string `json:"countryCode" validate:"omitempty,iso3166_1_alpha2"`
	AddressID   string `json:"addressId" validate:"max=40"`
	Address     string `json:"address" validate:"max=160"`
	City        string `json:"city" validate:"max=80"`
	PostalCode  string `json:"postalCode" validate:"max=16"`
	Country     string `json:"country" validate:"max=56"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// FromIdentity prefills a form from the signed-in identity.
func FromIdentity(identity sessions.Identity) FormState {
	first, last, _ := strings.Cut(strings.TrimSpace(identity.Name), " ")
	return FormState{
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		Email:       identity.Email,
		CountryCode: DomesticCountry,
	}
}

func (f FormState) Validate() error {
	return validation.Struct(f)
}

func (f FormState) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// FormattedPhone is the phone number as it appears in rendered output.
func (f FormState) FormattedPhone() string {
	return FormatPhone(f.Phone, f.CountryCode)
}

// AddressLine joins the street address, postal code and city.
func (f FormState) AddressLine() string {
	var parts []string
	if s := strings.TrimSpace(f.Address); s != "" {
		parts = append(parts, s)
	}
	locality := strings.TrimSpace(strings.TrimSpace(f.PostalCode) + " " + strings.TrimSpace(f.City))
	if locality != "" {
		parts = append(parts, locality)
	}
	return strings.Join(parts, ", ")
}

// TemplateData is the placeholder map used to fill Word templates.
func (f FormState) TemplateData() map[string]string {
	return map[string]string{
		"firstName":  f.FirstName,
		"lastName":   f.LastName,
		"fullName":   f.DisplayName(),
		"jobTitle":   f.JobTitle,
		"phone":      f.FormattedPhone(),
		"address":    f.Address,
		"city":       f.City,
		"postalCode": f.PostalCode,
		"country":    f.Country,
		"email":      f.Email,
	}
}
