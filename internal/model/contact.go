// Package model defines domain entities for the application.
package model

import "time"

// Contact represents a personal contact record owned by exactly one user.
type Contact struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phone_number"`
	Birthday       time.Time  `json:"birthday"` // Calendar date; time-of-day is always midnight UTC
	AdditionalInfo *string    `json:"additional_info,omitempty"`
	OwnerID        string     `json:"owner_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ContactPatch holds optional replacement values for a partial update.
// Nil fields are left untouched; Apply merges field-by-field.
type ContactPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *time.Time
	AdditionalInfo *string
}

// IsEmpty reports whether the patch changes nothing.
func (p *ContactPatch) IsEmpty() bool {
	return p.FirstName == nil &&
		p.LastName == nil &&
		p.Email == nil &&
		p.PhoneNumber == nil &&
		p.Birthday == nil &&
		p.AdditionalInfo == nil
}

// Apply merges the patch into the contact.
func (p *ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.Birthday != nil {
		c.Birthday = *p.Birthday
	}
	if p.AdditionalInfo != nil {
		c.AdditionalInfo = p.AdditionalInfo
	}
}

// BirthdayInWindow reports whether the contact's birthday (month and day,
// ignoring the birth year) falls within [from, from+days]. Handles windows
// that wrap past the end of the year.
func (c *Contact) BirthdayInWindow(from time.Time, days int) bool {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i <= days; i++ {
		d := from.AddDate(0, 0, i)
		if d.Month() == c.Birthday.Month() && d.Day() == c.Birthday.Day() {
			return true
		}
	}
	return false
}
