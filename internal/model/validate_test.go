package model

import "testing"

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "simple", email: "a@example.com"},
		{name: "plus tag", email: "rustacean+atl@example.org"},
		{name: "subdomain", email: "dev@mail.example.co"},
		{name: "empty", email: "", wantErr: true},
		{name: "missing at", email: "example.com", wantErr: true},
		{name: "missing domain dot", email: "a@localhost", wantErr: true},
		{name: "display name", email: "Ferris <ferris@example.com>", wantErr: true},
		{name: "spaces", email: "a b@example.com", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEmail(tc.email)
			if tc.wantErr && err != ErrInvalidEmail {
				t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", tc.email, err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("ValidateEmail(%q) = %v, want nil", tc.email, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Ferris@Example.COM "); got != "ferris@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
