package dto

import (
	"errors"
	"testing"
	"time"
)

func TestRegisterRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  RegisterRequest{Email: "ada@example.com", Password: "long-enough"},
		},
		{
			name:    "missing email",
			req:     RegisterRequest{Password: "long-enough"},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     RegisterRequest{Email: "not-an-email", Password: "long-enough"},
			wantErr: true,
		},
		{
			name:    "short password",
			req:     RegisterRequest{Email: "ada@example.com", Password: "short"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterRequest_ValidationErrorNamesFields(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{Email: "nope", Password: ""}
	err := req.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 invalid fields, got %v", verr.Fields)
	}
}

func TestCreateContactRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := CreateContactRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+15550001111",
		Birthday:    "1815-12-10",
	}

	birthday, err := valid.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	want := time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)
	if !birthday.Equal(want) {
		t.Errorf("birthday: got %v, want %v", birthday, want)
	}

	badPhone := valid
	badPhone.PhoneNumber = "555-0011"
	if _, err := badPhone.Validate(); err == nil {
		t.Error("expected error for non-E.164 phone number")
	}

	badDate := valid
	badDate.Birthday = "10/12/1815"
	if _, err := badDate.Validate(); err == nil {
		t.Error("expected error for malformed birthday")
	}
}

func TestUpdateContactRequest_ToPatch(t *testing.T) {
	t.Parallel()

	first := "Grace"
	birthday := "1906-12-09"
	req := UpdateContactRequest{FirstName: &first, Birthday: &birthday}

	patch, err := req.ToPatch()
	if err != nil {
		t.Fatalf("ToPatch failed: %v", err)
	}

	if patch.FirstName == nil || *patch.FirstName != "Grace" {
		t.Errorf("FirstName not carried into patch: %v", patch.FirstName)
	}
	if patch.Birthday == nil || patch.Birthday.Day() != 9 {
		t.Errorf("Birthday not parsed into patch: %v", patch.Birthday)
	}
	if patch.Email != nil || patch.LastName != nil {
		t.Error("absent fields must stay nil in the patch")
	}
}

func TestUpdateContactRequest_ToPatch_Empty(t *testing.T) {
	t.Parallel()

	patch, err := (&UpdateContactRequest{}).ToPatch()
	if err != nil {
		t.Fatalf("ToPatch failed: %v", err)
	}
	if !patch.IsEmpty() {
		t.Error("patch from empty request should be empty")
	}
}

func TestUpdateContactRequest_ToPatch_BadBirthday(t *testing.T) {
	t.Parallel()

	bad := "next tuesday"
	if _, err := (&UpdateContactRequest{Birthday: &bad}).ToPatch(); err == nil {
		t.Error("expected error for malformed birthday")
	}
}
