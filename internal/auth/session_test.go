package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSessionIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionIssuer: %v", err)
	}

	token, err := s.Issue("pid-1", "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a three-part JWT, got %q", token)
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.PID != "pid-1" || claims.UserID != "user-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestSessionIssuer_Expired(t *testing.T) {
	t.Parallel()

	s, _ := NewSessionIssuer(testSecret, time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issuedAt }

	token, err := s.Issue("pid-1", "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s.now = time.Now
	if _, err := s.Parse(token); err != ErrInvalidSession {
		t.Errorf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestSessionIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	a, _ := NewSessionIssuer(testSecret, time.Hour)
	b, _ := NewSessionIssuer(strings.Repeat("z", 32), time.Hour)

	token, _ := a.Issue("pid-1", "user-1")
	if _, err := b.Parse(token); err != ErrInvalidSession {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionIssuer_Garbage(t *testing.T) {
	t.Parallel()

	s, _ := NewSessionIssuer(testSecret, time.Hour)
	for _, token := range []string{"", "not.a.jwt", "lo-123e4567-e89b-42d3-a456-426614174000"} {
		if _, err := s.Parse(token); err != ErrInvalidSession {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidSession", token, err)
		}
	}
}

func TestNewSessionIssuer_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewSessionIssuer("short", time.Hour); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := NewSessionIssuer(testSecret, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}
