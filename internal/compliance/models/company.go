// Package models defines the core domain models of the compliance workflow:
// companies, their standard selections, generated documents and the support
// chat log.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Company sizes offered by the onboarding form. Storage does not restrict
// the value to this set.
const (
	SizeMicro      = "1-10"
	SizeSmall      = "11-50"
	SizeMedium     = "51-200"
	SizeLarge      = "201-1000"
	SizeEnterprise = "1000+"
)

// Company defines the domain model for an onboarded business.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID
	// Name is the company’s name.
	Name string
	// Sector is a free-text description of the line of business.
	Sector string
	// Size is the headcount bucket label.
	Size string
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time
}

// StandardSelection is one ISO standard a company targets.
type StandardSelection struct {
	ID        uint64
	CompanyID uuid.UUID
	ISOCode   string
}

// Codes returns the ISO codes of selections in order.
func Codes(selections []StandardSelection) []string {
	codes := make([]string, 0, len(selections))
	for _, s := range selections {
		codes = append(codes, s.ISOCode)
	}
	return codes
}
