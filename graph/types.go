package graph

import (
	"strings"

	"github.com/jrsteele09/signature-studio/internal/utils"
)

// Profile is the signed-in user's directory profile.
type Profile struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	GivenName         string   `json:"givenName"`
	Surname           string   `json:"surname"`
	JobTitle          string   `json:"jobTitle"`
	Mail              string   `json:"mail"`
	UserPrincipalName string   `json:"userPrincipalName"`
	MobilePhone       string   `json:"mobilePhone"`
	BusinessPhones    []string `json:"businessPhones"`
	OfficeLocation    string   `json:"officeLocation"`
	StreetAddress     string   `json:"streetAddress"`
	City              string   `json:"city"`
	PostalCode        string   `json:"postalCode"`
	Country           string   `json:"country"`
	UsageLocation     string   `json:"usageLocation"`
}

// Email is the mail address, or the sign-in name when no mailbox address is set.
func (p Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// Phone prefers the first business phone over the mobile number.
func (p Profile) Phone() string {
	for _, phone := range p.BusinessPhones {
		if strings.TrimSpace(phone) != "" {
			return phone
		}
	}
	return p.MobilePhone
}

// profileResponse mirrors /me, where most string properties may be null.
type profileResponse struct {
	ID                *string  `json:"id"`
	DisplayName       *string  `json:"displayName"`
	GivenName         *string  `json:"givenName"`
	Surname           *string  `json:"surname"`
	JobTitle          *string  `json:"jobTitle"`
	Mail              *string  `json:"mail"`
	UserPrincipalName *string  `json:"userPrincipalName"`
	MobilePhone       *string  `json:"mobilePhone"`
	BusinessPhones    []string `json:"businessPhones"`
	OfficeLocation    *string  `json:"officeLocation"`
	StreetAddress     *string  `json:"streetAddress"`
	City              *string  `json:"city"`
	PostalCode        *string  `json:"postalCode"`
	Country           *string  `json:"country"`
	UsageLocation     *string  `json:"usageLocation"`
}

func (r profileResponse) profile() Profile {
	return Profile{
		ID:                utils.Value(r.ID),
		DisplayName:       utils.Value(r.DisplayName),
		GivenName:         utils.Value(r.GivenName),
		Surname:           utils.Value(r.Surname),
		JobTitle:          utils.Value(r.JobTitle),
		Mail:              utils.Value(r.Mail),
		UserPrincipalName: utils.Value(r.UserPrincipalName),
		MobilePhone:       utils.Value(r.MobilePhone),
		BusinessPhones:    r.BusinessPhones,
		OfficeLocation:    utils.Value(r.OfficeLocation),
		StreetAddress:     utils.Value(r.StreetAddress),
		City:              utils.Value(r.City),
		PostalCode:        utils.Value(r.PostalCode),
		Country:           utils.Value(r.Country),
		UsageLocation:     utils.Value(r.UsageLocation),
	}
}

type Language struct {
	Locale      string `json:"locale"`
	DisplayName string `json:"displayName"`
}

type AutomaticReplies struct {
	Status string `json:"status"`
}

type MailboxSettings struct {
	TimeZone         string           `json:"timeZone"`
	DateFormat       string           `json:"dateFormat"`
	TimeFormat       string           `json:"timeFormat"`
	Language         Language         `json:"language"`
	AutomaticReplies AutomaticReplies `json:"automaticRepliesSetting"`
}

// DriveItem is an uploaded OneDrive file.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
	Size   int64  `json:"size"`
}
