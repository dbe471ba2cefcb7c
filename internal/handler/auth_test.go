package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rolodex/rolodex/internal/auth"
	"github.com/rolodex/rolodex/internal/handler/dto"
	"github.com/rolodex/rolodex/internal/middleware"
	"github.com/rolodex/rolodex/internal/model"
	"github.com/rolodex/rolodex/internal/repository"
	"github.com/rolodex/rolodex/internal/service"
)

// memUserStore is an in-memory user store for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*model.User{}}
}

func (m *memUserStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUserStore) UpdateUserAvatar(_ context.Context, id, avatarURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			url := avatarURL
			user.AvatarURL = &url
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// memUploader fakes avatar storage.
type memUploader struct{}

func (memUploader) Upload(_ context.Context, userID, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://cdn.example.com/avatars/%s", userID), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *memUserStore) {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     []byte("handler-test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	users := newMemUserStore()
	svc := service.NewAuthService(service.AuthServiceOptions{
		Users:   users,
		Tokens:  tokens,
		Hasher:  auth.NewHasher(4),
		Avatars: memUploader{},
	})

	return NewAuthHandler(svc, testLogger()), users
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.Register, "/auth/register", dto.RegisterRequest{
		Email:    "ada@example.com",
		Password: "long-enough",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "ada@example.com" {
		t.Errorf("email: got %q", resp.Email)
	}
	if resp.ID == "" {
		t.Error("expected a user ID in the response")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password fields")
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	body := dto.RegisterRequest{Email: "ada@example.com", Password: "long-enough"}
	if rec := postJSON(t, h.Register, "/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}

	rec := postJSON(t, h.Register, "/auth/register", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "EMAIL_TAKEN" {
		t.Errorf("error code: got %q, want EMAIL_TAKEN", resp.Code)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.Register, "/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Password: "x",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginAndRefresh(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	register := dto.RegisterRequest{Email: "ada@example.com", Password: "long-enough"}
	if rec := postJSON(t, h.Register, "/auth/register", register); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := postJSON(t, h.Login, "/auth/login", dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "long-enough",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var pair dto.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&pair); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("unexpected token response: %+v", pair)
	}

	rec = postJSON(t, h.Refresh, "/auth/refresh", dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var refreshed dto.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&refreshed); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	register := dto.RegisterRequest{Email: "ada@example.com", Password: "long-enough"}
	if rec := postJSON(t, h.Register, "/auth/register", register); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := postJSON(t, h.Login, "/auth/login", dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Refresh_Invalid(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	rec := postJSON(t, h.Refresh, "/auth/refresh", dto.RefreshRequest{RefreshToken: "garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// newAvatarRequest builds a multipart/form-data upload with a single "file"
// part carrying the given content type.
func newAvatarRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write multipart part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func registeredUser(t *testing.T, h *AuthHandler, users *memUserStore) *model.User {
	t.Helper()

	register := dto.RegisterRequest{Email: "ada@example.com", Password: "long-enough"}
	if rec := postJSON(t, h.Register, "/auth/register", register); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	user, err := users.GetUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	return user
}

func TestAuthHandler_UploadAvatar(t *testing.T) {
	h, users := newTestAuthHandler(t)
	user := registeredUser(t, h, users)

	req := newAvatarRequest(t, "image/png", []byte("png-bytes"))
	req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AvatarResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AvatarURL == "" {
		t.Error("expected an avatar URL")
	}
}

func TestAuthHandler_UploadAvatar_Unauthenticated(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	req := newAvatarRequest(t, "image/png", []byte("png-bytes"))
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_UploadAvatar_UnsupportedType(t *testing.T) {
	h, users := newTestAuthHandler(t)
	user := registeredUser(t, h, users)

	req := newAvatarRequest(t, "application/pdf", []byte("%PDF"))
	req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestAuthHandler_UploadAvatar_LargeAvatarPassesRouteCap(t *testing.T) {
	h, users := newTestAuthHandler(t)
	user := registeredUser(t, h, users)

	// The avatar route carries its own body cap sized for images; an upload
	// well past the 1 MiB JSON cap must still go through.
	wrapped := middleware.MaxBodySize(service.MaxAvatarSize)(http.HandlerFunc(h.UploadAvatar))

	req := newAvatarRequest(t, "image/png", bytes.Repeat([]byte{0x89}, 2<<20))
	req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a 2 MiB avatar, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_UploadAvatar_MissingFilePart(t *testing.T) {
	h, users := newTestAuthHandler(t)
	user := registeredUser(t, h, users)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("note", "no file here"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_UploadAvatar_NotMultipart(t *testing.T) {
	h, users := newTestAuthHandler(t)
	user := registeredUser(t, h, users)

	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", strings.NewReader("png-bytes"))
	req.Header.Set("Content-Type", "image/png")
	req = req.WithContext(auth.ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-multipart body, got %d", rec.Code)
	}
}
