package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactPerson is a person imported from the contact CSV. Note often
// carries the name of the organization the person works for, which the
// matching engine uses as its strongest signal.
type ContactPerson struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Note       *string   `json:"note,omitempty"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (c *ContactPerson) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
