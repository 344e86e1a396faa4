package domain

import (
	"time"

	"github.com/google/uuid"
)

// FormRecord references a third-party web-form submission funnel. The
// designation is a human-readable title that usually names a facility,
// which is the only matching signal the record carries.
type FormRecord struct {
	ID           uuid.UUID `json:"id"`
	ExternalCode string    `json:"external_code"`
	Designation  string    `json:"designation"`
	URL          *string   `json:"url,omitempty"`
	Customer     *string   `json:"customer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
