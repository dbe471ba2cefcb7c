package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rolodex/rolodex/internal/model"
	"github.com/rolodex/rolodex/internal/repository"
)

// fakeUserStore is an in-memory UserStore keyed by email.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *user
	f.users[user.Email] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) UpdateUserAvatar(_ context.Context, id, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == id {
			url := avatarURL
			user.AvatarURL = &url
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) delete(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, email)
}

// fakeRevoker is an in-memory refresh token denylist.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]bool{}}
}

func (f *fakeRevoker) RevokeRefreshToken(_ context.Context, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
	return nil
}

func (f *fakeRevoker) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[token], nil
}

// fakeUploader records uploads and returns deterministic URLs.
type fakeUploader struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (f *fakeUploader) Upload(_ context.Context, userID, _ string, body io.Reader, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", err
	}
	f.uploads[userID] = buf.Bytes()
	return fmt.Sprintf("https://cdn.example.com/avatars/%s", userID), nil
}

// fakeContactStore is an in-memory ContactStore.
type fakeContactStore struct {
	mu       sync.Mutex
	contacts map[string]*model.Contact
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: map[string]*model.Contact{}}
}

func (f *fakeContactStore) CreateContact(_ context.Context, contact *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.Email == contact.Email || c.PhoneNumber == contact.PhoneNumber {
			return repository.ErrContactExists
		}
	}
	cp := *contact
	f.contacts[contact.ID] = &cp
	return nil
}

func (f *fakeContactStore) GetContact(_ context.Context, id, ownerID string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContactStore) ListContacts(_ context.Context, filter repository.ContactFilter, cursor string, limit int) ([]*model.Contact, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor == "bad" {
		return nil, "", repository.ErrInvalidCursor
	}
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.OwnerID != filter.OwnerID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, "", nil
}

func (f *fakeContactStore) UpdateContact(_ context.Context, contact *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.contacts[contact.ID]
	if !ok || existing.OwnerID != contact.OwnerID {
		return repository.ErrContactNotFound
	}
	for id, c := range f.contacts {
		if id == contact.ID {
			continue
		}
		if c.Email == contact.Email || c.PhoneNumber == contact.PhoneNumber {
			return repository.ErrContactExists
		}
	}
	cp := *contact
	f.contacts[contact.ID] = &cp
	return nil
}

func (f *fakeContactStore) DeleteContact(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return repository.ErrContactNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeContactStore) UpcomingBirthdays(_ context.Context, ownerID string, from time.Time, days int) ([]*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.OwnerID != ownerID {
			continue
		}
		if c.BirthdayInWindow(from, days) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
