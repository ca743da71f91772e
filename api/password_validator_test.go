package api

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid mixed", "S3cur3P@ssw0rd!", nil},
		{"valid minimal", "Xy9#mK2$", nil},
		{"too short", "Ab1!x", ErrPasswordTooShort},
		{"too long", strings.Repeat("Aa1!", 19), ErrPasswordTooLong},
		{"no uppercase", "s3cur3p@ssw0rd!", ErrPasswordNoUppercase},
		{"no lowercase", "S3CUR3P@SSW0RD!", ErrPasswordNoLowercase},
		{"no digit", "SecurePass/word!", ErrPasswordNoDigit},
		{"no special", "S3cur3Passw0rd", ErrPasswordNoSpecial},
		{"contains space", "S3cur3 P@ssw0rd", ErrPasswordContainsSpaces},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}
