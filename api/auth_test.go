package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func testConfig() Config {
	return Config{JWTSecret: testSecret, JWTIssuer: "poxil-test"}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "poxil-test", "user-1", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != RoleUser {
		t.Fatalf("claims = %q/%q, want user-1/%s", claims.Sub, claims.Role, RoleUser)
	}
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	expired, err := GenerateToken(testSecret, "poxil-test", "user-1", RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	wrongSecret, err := GenerateToken("other-secret", "poxil-test", "user-1", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", wrongSecret},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(testSecret, tt.token); err == nil {
				t.Fatal("ParseToken accepted invalid token")
			}
		})
	}
}

func claimsEcho(t *testing.T) (http.Handler, *Claims) {
	t.Helper()
	var got Claims
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := getClaims(r); err == nil {
			got = *c
		}
		w.WriteHeader(http.StatusOK)
	})
	return h, &got
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg.JWTSecret, cfg.JWTIssuer, "user-1", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, got := claimsEcho(t)
			mw := AuthMiddleware(cfg)(next)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && got.Sub != "user-1" {
				t.Fatalf("claims.Sub = %q, want user-1", got.Sub)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg.JWTSecret, cfg.JWTIssuer, "user-2", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Run("no token passes through", func(t *testing.T) {
		next, got := claimsEcho(t)
		mw := OptionalAuthMiddleware(cfg)(next)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.Sub != "" {
			t.Fatalf("unexpected claims attached: %q", got.Sub)
		}
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		next, got := claimsEcho(t)
		mw := OptionalAuthMiddleware(cfg)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if got.Sub != "user-2" {
			t.Fatalf("claims.Sub = %q, want user-2", got.Sub)
		}
	})

	t.Run("bad token still passes through", func(t *testing.T) {
		next, got := claimsEcho(t)
		mw := OptionalAuthMiddleware(cfg)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.Sub != "" {
			t.Fatalf("unexpected claims attached: %q", got.Sub)
		}
	})
}

func TestRequireRole(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name       string
		role       string
		minRole    string
		wantStatus int
	}{
		{"user meets user", RoleUser, RoleUser, http.StatusOK},
		{"admin meets user", RoleAdmin, RoleUser, http.StatusOK},
		{"user below admin", RoleUser, RoleAdmin, http.StatusForbidden},
		{"guest below user", RoleGuest, RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(cfg.JWTSecret, cfg.JWTIssuer, "u", tt.role, time.Hour)
			if err != nil {
				t.Fatalf("GenerateToken: %v", err)
			}
			next, _ := claimsEcho(t)
			mw := AuthMiddleware(cfg)(RequireRole(tt.minRole)(next))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
