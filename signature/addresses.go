package signature

import (
	_ "embed"
	"fmt"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed addresses.yaml
var addressesYAML []byte

// Address is an office the signature can point to.
type Address struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label" json:"label"`
	Address    string `yaml:"address" json:"address"`
	City       string `yaml:"city" json:"city"`
	PostalCode string `yaml:"postalCode" json:"postalCode"`
	Country    string `yaml:"country" json:"country"`
}

var addresses = mustLoadAddresses(addressesYAML)

func mustLoadAddresses(data []byte) []Address {
	list, err := loadAddresses(data)
	if err != nil {
		panic(err)
	}
	return list
}

func loadAddresses(data []byte) ([]Address, error) {
	var list []Address
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse address table: %w", err)
	}
	seen := make(map[string]bool, len(list))
	for _, a := range list {
		if a.ID == "" || seen[a.ID] {
			return nil, fmt.Errorf("address table: missing or duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return list, nil
}

// Addresses returns the address lookup table in display order.
func Addresses() []Address {
	out := make([]Address, len(addresses))
	copy(out, addresses)
	return out
}

func LookupAddress(id string) (Address, bool) {
	for _, a := range addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// SelectAddress overwrites the address, city, postal code and country with
// the entry for id. Later manual edits to those fields are kept as they are.
func (f *FormState) SelectAddress(id string) error {
	a, ok := LookupAddress(id)
	if !ok {
		return &errors.ValidationError{Field: "addressId", Message: fmt.Sprintf("unknown address %q", id), Err: errors.ErrUnknownAddress}
	}
	f.AddressID = a.ID
	f.Address = a.Address
	f.City = a.City
	f.PostalCode = a.PostalCode
	f.Country = a.Country
	return nil
}
