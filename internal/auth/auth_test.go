package auth

import (
	"net/http/httptest"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid token", header: "Bearer abc123", want: "abc123"},
		{name: "token with padding", header: "Bearer  abc123 ", want: "abc123"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
		{name: "empty token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := ExtractBearerToken(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	tokens := []TokenConfig{
		{Token: "scoped-token", Scopes: []string{"tasks:rw"}},
		{Token: "read-token", Scopes: []string{"definition:ro"}},
	}

	t.Run("legacy api key is admin", func(t *testing.T) {
		p, ok := Authenticate("legacy", "legacy", tokens)
		if !ok {
			t.Fatal("expected authentication to succeed")
		}
		if !HasAnyScope(p, "anything:at:all") {
			t.Error("admin should pass any scope check")
		}
	})

	t.Run("scoped token", func(t *testing.T) {
		p, ok := Authenticate("scoped-token", "legacy", tokens)
		if !ok {
			t.Fatal("expected authentication to succeed")
		}
		if !HasAnyScope(p, "tasks:rw") {
			t.Error("expected tasks:rw")
		}
		// Write implies read.
		if !HasAnyScope(p, "tasks:ro") {
			t.Error("tasks:rw should imply tasks:ro")
		}
		if !HasAnyScope(p, "definition:ro") {
			t.Error("tasks:rw should imply definition:ro")
		}
	})

	t.Run("read token lacks write", func(t *testing.T) {
		p, ok := Authenticate("read-token", "legacy", tokens)
		if !ok {
			t.Fatal("expected authentication to succeed")
		}
		if HasAnyScope(p, "tasks:rw") {
			t.Error("definition:ro must not grant tasks:rw")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if _, ok := Authenticate("nope", "legacy", tokens); ok {
			t.Error("expected authentication to fail")
		}
	})

	t.Run("empty presented token", func(t *testing.T) {
		if _, ok := Authenticate("", "", nil); ok {
			t.Error("empty tokens must never authenticate")
		}
	})
}
