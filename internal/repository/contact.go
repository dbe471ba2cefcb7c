package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rolodex/rolodex/internal/model"
)

// Common errors for contact repository operations.
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrContactExists   = errors.New("contact with this email or phone already exists")
	ErrInvalidCursor   = errors.New("invalid pagination cursor")
)

// ContactFilter contains criteria for listing contacts.
// All queries are scoped to a single owner.
type ContactFilter struct {
	OwnerID string
	Name    string // substring match against first or last name
	Email   string // substring match
}

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateContact inserts a new contact into the database.
func (r *Repository) CreateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday,
		contact.AdditionalInfo,
		contact.OwnerID,
		contact.CreatedAt,
		contact.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrContactExists
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetContact retrieves a contact by ID, scoped to an owner.
// A contact belonging to someone else is indistinguishable from a missing one.
func (r *Repository) GetContact(ctx context.Context, id, ownerID string) (*model.Contact, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// ListContacts retrieves a paginated list of contacts matching the filter.
func (r *Repository) ListContacts(ctx context.Context, filter ContactFilter, cursor string, limit int) ([]*model.Contact, string, error) {
	// Decode cursor if provided
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	// Build query with filters
	query := `
		SELECT id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1
	`
	args := []any{filter.OwnerID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	if filter.Name != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Name+"%")
		argIndex++
	}

	if filter.Email != "" {
		query += fmt.Sprintf(" AND email ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Email+"%")
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContactFromRows(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating contacts: %w", err)
	}

	// Determine if there are more results
	var nextCursor string
	if len(contacts) > limit {
		contacts = contacts[:limit] // Remove extra row
		last := contacts[len(contacts)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return contacts, nextCursor, nil
}

// UpdateContact updates a contact's mutable fields, scoped to an owner.
func (r *Repository) UpdateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone_number = $6, birthday = $7, additional_info = $8, updated_at = now()
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.OwnerID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		contact.Birthday,
		contact.AdditionalInfo,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrContactExists
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}

// DeleteContact removes a contact, scoped to an owner.
func (r *Repository) DeleteContact(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}

// UpcomingBirthdays lists contacts whose birthday (month and day) falls within
// the window [from, from+days]. Matching is done on month and day only so that
// the birth year never matters, and the window wraps across year end.
func (r *Repository) UpcomingBirthdays(ctx context.Context, ownerID string, from time.Time, days int) ([]*model.Contact, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1 AND to_char(birthday, 'MMDD') = ANY($2)
		ORDER BY to_char(birthday, 'MMDD'), last_name, first_name
	`

	rows, err := r.pool.Query(ctx, query, ownerID, monthDayWindow(from, days))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming birthdays: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContactFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// monthDayWindow returns the MMDD strings covered by [from, from+days].
// Feb 29 is included whenever the window passes Feb 28, so contacts born on
// a leap day are not skipped in non-leap years.
func monthDayWindow(from time.Time, days int) []string {
	out := make([]string, 0, days+2)
	seen := make(map[string]bool, days+2)
	add := func(md string) {
		if !seen[md] {
			seen[md] = true
			out = append(out, md)
		}
	}

	for i := 0; i <= days; i++ {
		day := from.AddDate(0, 0, i)
		add(day.Format("0102"))
		if day.Month() == time.February && day.Day() == 28 {
			add("0229")
		}
	}

	return out
}

// scanContact scans a single row into a Contact model.
func scanContact(row pgx.Row) (*model.Contact, error) {
	var contact model.Contact
	err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.PhoneNumber,
		&contact.Birthday,
		&contact.AdditionalInfo,
		&contact.OwnerID,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// scanContactFromRows scans a contact from pgx.Rows.
func scanContactFromRows(rows pgx.Rows) (*model.Contact, error) {
	return scanContact(rows)
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
