// Package domain holds the entities passed between the import, matching
// and persistence layers. The matching engine reads these structs and
// never mutates them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrgType classifies an organization within the cleansing workflow.
type OrgType string

const (
	// OrgTypeParent is an umbrella organization that administratively
	// owns one or more facilities.
	OrgTypeParent OrgType = "parent"
	// OrgTypeFacility is a single service-delivery location.
	OrgTypeFacility OrgType = "facility"
	// OrgTypeInactive marks records that should be excluded from
	// assignment and export.
	OrgTypeInactive OrgType = "inactive"
)

// Valid reports whether t is one of the known classifications.
func (t OrgType) Valid() bool {
	switch t {
	case OrgTypeParent, OrgTypeFacility, OrgTypeInactive:
		return true
	}
	return false
}

// Organization is a parent organization or facility imported from CSV.
// Type is nil until the record has been classified.
type Organization struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Street       string     `json:"street"`
	ZipCode      string     `json:"zip_code"`
	City         string     `json:"city"`
	Type         *OrgType   `json:"type,omitempty"`
	IsAmbulant   bool       `json:"is_ambulant"`
	IsStationaer bool       `json:"is_stationaer"`
	IsValidated  bool       `json:"is_validated"`
	ParentOrgID  *uuid.UUID `json:"parent_org_id,omitempty"`

	// Direct contact fields, only meaningful for facilities.
	GeneralContact   *string `json:"general_contact,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Email            *string `json:"email,omitempty"`
	InvoiceEmail     *string `json:"invoice_email,omitempty"`
	ApplicationEmail *string `json:"application_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParent reports whether the organization is classified as a parent.
func (o *Organization) IsParent() bool {
	return o.Type != nil && *o.Type == OrgTypeParent
}

// IsFacility reports whether the organization is classified as a facility.
func (o *Organization) IsFacility() bool {
	return o.Type != nil && *o.Type == OrgTypeFacility
}
