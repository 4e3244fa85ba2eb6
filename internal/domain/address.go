package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Address struct {
	ID           uuid.UUID `json:"id" db:"id"`
	City         string    `json:"city" db:"city"`
	PostalCode   string    `json:"postal_code" db:"postal_code"`
	StreetName   string    `json:"street_name" db:"street_name"`
	StreetNumber string    `json:"street_number,omitempty" db:"street_number"`
	ExtraInfo    string    `json:"extra_info,omitempty" db:"extra_info"`
}

// Normalize trims every component so equal addresses compare equal.
func (a *Address) Normalize() {
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.StreetName = strings.TrimSpace(a.StreetName)
	a.StreetNumber = strings.TrimSpace(a.StreetNumber)
	a.ExtraInfo = strings.TrimSpace(a.ExtraInfo)
}

func (a *Address) Validate() error {
	if a.City == "" || a.PostalCode == "" || a.StreetName == "" {
		return InvalidArgumentf("address needs city, postal code and street name")
	}
	return nil
}

// SameComponents ignores ids and case.
func (a *Address) SameComponents(other *Address) bool {
	return strings.EqualFold(a.City, other.City) &&
		strings.EqualFold(a.PostalCode, other.PostalCode) &&
		strings.EqualFold(a.StreetName, other.StreetName) &&
		strings.EqualFold(a.StreetNumber, other.StreetNumber) &&
		strings.EqualFold(a.ExtraInfo, other.ExtraInfo)
}

// PostalLine is the single-line form handed to the routing collaborator.
func (a *Address) PostalLine() string {
	street := a.StreetName
	if a.StreetNumber != "" {
		street = a.StreetNumber + " " + street
	}
	return fmt.Sprintf("%s, %s %s", street, a.PostalCode, a.City)
}
