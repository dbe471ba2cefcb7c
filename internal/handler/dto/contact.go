package dto

import (
	"time"

	"github.com/rolodex/rolodex/internal/model"
)

// CreateContactRequest represents the request body for creating a contact.
type CreateContactRequest struct {
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	PhoneNumber    string  `json:"phone_number" validate:"required,e164"`
	Birthday       string  `json:"birthday" validate:"required"`
	AdditionalInfo *string `json:"additional_info,omitempty" validate:"omitempty,max=2000"`
}

// Validate checks the request and returns the parsed birthday.
func (r *CreateContactRequest) Validate() (time.Time, error) {
	if err := checkStruct(r); err != nil {
		return time.Time{}, err
	}
	return parseBirthday(r.Birthday)
}

// UpdateContactRequest represents the request body for a partial update.
// Absent fields leave the stored value untouched; additional_info may be
// set to an empty string to clear the note.
type UpdateContactRequest struct {
	FirstName      *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	PhoneNumber    *string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Birthday       *string `json:"birthday,omitempty"`
	AdditionalInfo *string `json:"additional_info,omitempty" validate:"omitempty,max=2000"`
}

// ToPatch validates the request and converts it into a merge patch.
func (r *UpdateContactRequest) ToPatch() (model.ContactPatch, error) {
	if err := checkStruct(r); err != nil {
		return model.ContactPatch{}, err
	}

	patch := model.ContactPatch{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		AdditionalInfo: r.AdditionalInfo,
	}

	if r.Birthday != nil {
		birthday, err := parseBirthday(*r.Birthday)
		if err != nil {
			return model.ContactPatch{}, err
		}
		patch.Birthday = &birthday
	}

	return patch, nil
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Birthday       string    `json:"birthday"`
	AdditionalInfo *string   `json:"additional_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContactListResponse represents a paginated list of contacts.
type ContactListResponse struct {
	Data       []ContactResponse `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

// ToContactResponse converts a Contact model to ContactResponse DTO.
func ToContactResponse(contact *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:             contact.ID,
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		Email:          contact.Email,
		PhoneNumber:    contact.PhoneNumber,
		Birthday:       formatBirthday(contact.Birthday),
		AdditionalInfo: contact.AdditionalInfo,
		CreatedAt:      contact.CreatedAt,
		UpdatedAt:      contact.UpdatedAt,
	}
}

// ToContactListResponse converts contacts to a ContactListResponse.
func ToContactListResponse(contacts []*model.Contact, nextCursor string, hasMore bool) *ContactListResponse {
	responses := make([]ContactResponse, len(contacts))
	for i, contact := range contacts {
		responses[i] = *ToContactResponse(contact)
	}
	return &ContactListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
