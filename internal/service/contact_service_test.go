package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rolodex/rolodex/internal/metrics"
	"github.com/rolodex/rolodex/internal/model"
)

func newTestContactService(t *testing.T) (*ContactService, *fakeContactStore, *metrics.InMemoryRecorder) {
	t.Helper()
	store := newFakeContactStore()
	recorder := metrics.NewInMemory()
	svc := NewContactService(store, recorder)
	return svc, store, recorder
}

func baseInput(owner string) CreateContactInput {
	return CreateContactInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+15550001111",
		Birthday:    time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		OwnerID:     owner,
	}
}

func TestContactService_Create(t *testing.T) {
	t.Parallel()
	svc, _, recorder := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}
	if contact.ID == "" {
		t.Error("expected a generated contact ID")
	}
	if contact.OwnerID != "owner-1" {
		t.Errorf("OwnerID: got %q, want %q", contact.OwnerID, "owner-1")
	}

	if got := recorder.Snapshot().ContactsCreated; got != 1 {
		t.Errorf("ContactsCreated: got %d, want 1", got)
	}
}

func TestContactService_Create_Duplicate(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	if _, err := svc.CreateContact(ctx, baseInput("owner-1")); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	// Duplicate email collides even across owners.
	dup := baseInput("owner-2")
	dup.PhoneNumber = "+15550002222"
	if _, err := svc.CreateContact(ctx, dup); !errors.Is(err, ErrContactExists) {
		t.Errorf("expected ErrContactExists, got: %v", err)
	}
}

func TestContactService_Get_OwnerScoped(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	if _, err := svc.GetContact(ctx, contact.ID, "owner-1"); err != nil {
		t.Errorf("owner should see their contact: %v", err)
	}
	if _, err := svc.GetContact(ctx, contact.ID, "owner-2"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("other owner: expected ErrContactNotFound, got: %v", err)
	}
}

func TestContactService_List_InvalidCursor(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	_, err := svc.ListContacts(ctx, ListContactsInput{OwnerID: "owner-1", Cursor: "bad"})
	if !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("expected ErrInvalidCursor, got: %v", err)
	}
}

func TestContactService_Update_Patch(t *testing.T) {
	t.Parallel()
	svc, _, recorder := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	first := "Augusta"
	updated, err := svc.UpdateContact(ctx, contact.ID, "owner-1", model.ContactPatch{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}

	if updated.FirstName != "Augusta" {
		t.Errorf("FirstName: got %q, want %q", updated.FirstName, "Augusta")
	}
	// Untouched fields survive the merge.
	if updated.LastName != contact.LastName {
		t.Errorf("LastName changed unexpectedly: got %q", updated.LastName)
	}
	if updated.Email != contact.Email {
		t.Errorf("Email changed unexpectedly: got %q", updated.Email)
	}

	if got := recorder.Snapshot().ContactsUpdated; got != 1 {
		t.Errorf("ContactsUpdated: got %d, want 1", got)
	}
}

func TestContactService_Update_Empty(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	_, err = svc.UpdateContact(ctx, contact.ID, "owner-1", model.ContactPatch{})
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got: %v", err)
	}
}

func TestContactService_Update_OwnerScoped(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	first := "Hijacked"
	_, err = svc.UpdateContact(ctx, contact.ID, "owner-2", model.ContactPatch{FirstName: &first})
	if !errors.Is(err, ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound, got: %v", err)
	}
}

func TestContactService_Delete(t *testing.T) {
	t.Parallel()
	svc, _, recorder := newTestContactService(t)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, baseInput("owner-1"))
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	if err := svc.DeleteContact(ctx, contact.ID, "owner-2"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("other owner delete: expected ErrContactNotFound, got: %v", err)
	}

	if err := svc.DeleteContact(ctx, contact.ID, "owner-1"); err != nil {
		t.Fatalf("DeleteContact failed: %v", err)
	}
	if _, err := svc.GetContact(ctx, contact.ID, "owner-1"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound after delete, got: %v", err)
	}

	if got := recorder.Snapshot().ContactsDeleted; got != 1 {
		t.Errorf("ContactsDeleted: got %d, want 1", got)
	}
}

func TestContactService_UpcomingBirthdays(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestContactService(t)
	ctx := context.Background()

	// Freeze time near year end so the window wraps.
	now := time.Date(2025, time.December, 29, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	soon := baseInput("owner-1")
	soon.Birthday = time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateContact(ctx, soon); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	later := baseInput("owner-1")
	later.Email = "grace@example.com"
	later.PhoneNumber = "+15550003333"
	later.Birthday = time.Date(1906, time.February, 15, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateContact(ctx, later); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	got, err := svc.UpcomingBirthdays(ctx, "owner-1")
	if err != nil {
		t.Fatalf("UpcomingBirthdays failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d contacts, want 1", len(got))
	}
	if got[0].Birthday.Month() != time.January || got[0].Birthday.Day() != 2 {
		t.Errorf("wrong contact returned: birthday %v", got[0].Birthday)
	}
}
