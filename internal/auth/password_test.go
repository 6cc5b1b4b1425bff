package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Abcdef1!", false},
		{"TooShort", "Ab1!", true},
		{"NoUpper", "abcdef1!", true},
		{"NoLower", "ABCDEF1!", true},
		{"NoDigit", "Abcdefg!", true},
		{"NoSymbol", "Abcdefg1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.password, err)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)
	if err != nil {
		t.Fatalf("unexpected error generating code: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("expected 4 characters, got %d", len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected character %q in code %q", r, code)
		}
	}
}
