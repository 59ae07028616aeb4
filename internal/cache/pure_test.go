package cache

import (
	"strings"
	"testing"

	"github.com/dsgallups/rust-atlanta/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"
	if hashIP(ip) != hashIP(ip) {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if hash := hashIP(tt.ip); len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashIP(tt.ip1) == hashIP(tt.ip2) {
				t.Errorf("Different IPs should produce different hashes: %q and %q", tt.ip1, tt.ip2)
			}
		})
	}
}

func TestPrincipalKey_HidesAPIKey(t *testing.T) {
	t.Parallel()

	apiKey := "lo-6f1c2a9e-3b7d-4c1e-9a2f-0d8e7c6b5a41"
	key := principalKey(apiKey)

	if !strings.HasPrefix(key, principalCachePrefix) {
		t.Fatalf("key %q missing prefix", key)
	}
	if strings.Contains(key, apiKey) || strings.Contains(key, "6f1c2a9e") {
		t.Errorf("key %q leaks the API key", key)
	}
	if principalKey(apiKey) != key {
		t.Error("principalKey should be deterministic")
	}
	if principalKey(apiKey+"x") == key {
		t.Error("different API keys should map to different cache keys")
	}
}

func TestPrincipalCodec(t *testing.T) {
	t.Parallel()

	in := &model.Principal{UserID: "01HZX", PID: "pid-1", Email: "a@example.com", Method: model.AuthMethodSession}
	data, err := encodePrincipal(in)
	if err != nil {
		t.Fatalf("encodePrincipal: %v", err)
	}

	out, ok := decodePrincipal(data)
	if !ok {
		t.Fatal("decodePrincipal reported a miss")
	}
	if out.UserID != in.UserID || out.PID != in.PID || out.Email != in.Email {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
	if out.Method != model.AuthMethodAPIKey {
		t.Errorf("Method = %q, want %q", out.Method, model.AuthMethodAPIKey)
	}
}

func TestDecodePrincipal_Corrupted(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "{", `{"pid":"x"}`, "null"} {
		if _, ok := decodePrincipal([]byte(raw)); ok {
			t.Errorf("decodePrincipal(%q) should be a miss", raw)
		}
	}
}
