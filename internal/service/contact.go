package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rolodex/rolodex/internal/metrics"
	"github.com/rolodex/rolodex/internal/model"
	"github.com/rolodex/rolodex/internal/repository"
)

// Contact service errors.
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrContactExists   = errors.New("contact with this email or phone already exists")
	ErrInvalidCursor   = errors.New("invalid pagination cursor")
	ErrEmptyUpdate     = errors.New("update contains no fields")
)

// Default and maximum page sizes for contact listings.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// birthdayWindowDays is how far ahead the upcoming birthdays view looks.
const birthdayWindowDays = 7

// ContactStore is the persistence surface the contact service needs.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	GetContact(ctx context.Context, id, ownerID string) (*model.Contact, error)
	ListContacts(ctx context.Context, filter repository.ContactFilter, cursor string, limit int) ([]*model.Contact, string, error)
	UpdateContact(ctx context.Context, contact *model.Contact) error
	DeleteContact(ctx context.Context, id, ownerID string) error
	UpcomingBirthdays(ctx context.Context, ownerID string, from time.Time, days int) ([]*model.Contact, error)
}

// ContactService handles contact book business logic.
// Every operation is scoped to the owning user.
type ContactService struct {
	contacts ContactStore
	metrics  metrics.Recorder

	// now is injectable for birthday window tests.
	now func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(contacts ContactStore, recorder metrics.Recorder) *ContactService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContactService{
		contacts: contacts,
		metrics:  recorder,
		now:      time.Now,
	}
}

// CreateContactInput defines input for creating a contact.
type CreateContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time
	AdditionalInfo *string
	OwnerID        string
}

// CreateContact creates a new contact for the owner.
func (s *ContactService) CreateContact(ctx context.Context, input CreateContactInput) (*model.Contact, error) {
	now := s.now().UTC()
	contact := &model.Contact{
		ID:             ulid.Make().String(),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		Birthday:       input.Birthday,
		AdditionalInfo: input.AdditionalInfo,
		OwnerID:        input.OwnerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.contacts.CreateContact(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrContactExists) {
			return nil, ErrContactExists
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.metrics.IncContactCreated()

	return contact, nil
}

// GetContact retrieves one of the owner's contacts by ID.
func (s *ContactService) GetContact(ctx context.Context, id, ownerID string) (*model.Contact, error) {
	contact, err := s.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return contact, nil
}

// ListContactsInput defines input for listing contacts.
type ListContactsInput struct {
	OwnerID string
	Name    string
	Email   string
	Cursor  string
	Limit   int
}

// ListContactsOutput defines output for listing contacts.
type ListContactsOutput struct {
	Contacts   []*model.Contact
	NextCursor string
	HasMore    bool
}

// ListContacts retrieves a paginated list of the owner's contacts.
func (s *ContactService) ListContacts(ctx context.Context, input ListContactsInput) (*ListContactsOutput, error) {
	if input.Limit <= 0 || input.Limit > maxPageSize {
		input.Limit = defaultPageSize
	}

	filter := repository.ContactFilter{
		OwnerID: input.OwnerID,
		Name:    input.Name,
		Email:   input.Email,
	}

	contacts, nextCursor, err := s.contacts.ListContacts(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	return &ListContactsOutput{
		Contacts:   contacts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// UpdateContact applies a partial update to one of the owner's contacts.
// The patch is merged over the stored contact; absent fields keep their value.
func (s *ContactService) UpdateContact(ctx context.Context, id, ownerID string, patch model.ContactPatch) (*model.Contact, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	contact, err := s.contacts.GetContact(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	patch.Apply(contact)

	if err := s.contacts.UpdateContact(ctx, contact); err != nil {
		switch {
		case errors.Is(err, repository.ErrContactNotFound):
			return nil, ErrContactNotFound
		case errors.Is(err, repository.ErrContactExists):
			return nil, ErrContactExists
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.metrics.IncContactUpdated()

	return contact, nil
}

// DeleteContact removes one of the owner's contacts.
func (s *ContactService) DeleteContact(ctx context.Context, id, ownerID string) error {
	if err := s.contacts.DeleteContact(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return ErrContactNotFound
		}
		return err
	}

	s.metrics.IncContactDeleted()

	return nil
}

// UpcomingBirthdays lists the owner's contacts with a birthday in the next
// seven days, including today. Only month and day are considered, so the
// window carries over a year boundary.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID string) ([]*model.Contact, error) {
	from := s.now().UTC()
	return s.contacts.UpcomingBirthdays(ctx, ownerID, from, birthdayWindowDays)
}
