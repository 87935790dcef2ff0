package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGoogleOAuthProvider_GetLoginURL_ContainsRequiredParams(t *testing.T) {
	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost:8080/api/auth/google/callback",
	})

	raw := provider.GetLoginURL("test-state-value")
	if raw == "" {
		t.Fatal("expected non-empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse login URL: %v", err)
	}
	if u.Host != "accounts.google.com" {
		t.Errorf("host = %q, want accounts.google.com", u.Host)
	}

	q := u.Query()
	tests := []struct {
		param string
		want  string
	}{
		{"client_id", "test-client-id"},
		{"redirect_uri", "http://localhost:8080/api/auth/google/callback"},
		{"state", "test-state-value"},
		{"response_type", "code"},
		{"scope", "profile"},
		{"access_type", "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			if got := q.Get(tt.param); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.param, got, tt.want)
			}
		})
	}
}

func TestGoogleOAuthProvider_GetLoginURL_UsesOverriddenAuthURL(t *testing.T) {
	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID: "id",
		AuthURL:  "http://idp.test/authorize",
	})

	if got := provider.GetLoginURL("s"); !strings.HasPrefix(got, "http://idp.test/authorize?") {
		t.Errorf("login URL = %q, want prefix http://idp.test/authorize?", got)
	}
}

// newFakeGoogle はトークンエンドポイントとユーザー情報エンドポイントを持つテスト用サーバーを返す。
func newFakeGoogle(t *testing.T, accessToken string, userInfo map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token form: %v", err)
		}
		if r.PostForm.Get("code") != "test-auth-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  accessToken,
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "test-refresh-token",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	})
	return httptest.NewServer(mux)
}

func newTestProvider(srv *httptest.Server) *GoogleOAuthProvider {
	return NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
		HTTPClient:   srv.Client(),
	})
}

func TestGoogleOAuthProvider_ExchangeCode_Success(t *testing.T) {
	srv := newFakeGoogle(t, "t1", map[string]interface{}{
		"sub":         "g123",
		"name":        "Ada Lovelace",
		"given_name":  "Ada",
		"family_name": "Lovelace",
	})
	defer srv.Close()

	userInfo, err := newTestProvider(srv).ExchangeCode(context.Background(), "test-auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if userInfo.Provider != "google" {
		t.Errorf("provider = %q, want %q", userInfo.Provider, "google")
	}
	if userInfo.ProviderUserID != "g123" {
		t.Errorf("providerUserID = %q, want %q", userInfo.ProviderUserID, "g123")
	}
	if userInfo.GivenName != "Ada" || userInfo.FamilyName != "Lovelace" {
		t.Errorf("names = %q %q, want Ada Lovelace", userInfo.GivenName, userInfo.FamilyName)
	}
	if userInfo.DisplayName != "Ada Lovelace" {
		t.Errorf("displayName = %q, want %q", userInfo.DisplayName, "Ada Lovelace")
	}
	if userInfo.AccessToken != "t1" {
		t.Errorf("accessToken = %q, want %q", userInfo.AccessToken, "t1")
	}
	if userInfo.RefreshToken != "test-refresh-token" {
		t.Errorf("refreshToken = %q, want %q", userInfo.RefreshToken, "test-refresh-token")
	}
}

func TestGoogleOAuthProvider_ExchangeCode_TokenError(t *testing.T) {
	srv := newFakeGoogle(t, "t1", map[string]interface{}{"sub": "g123"})
	defer srv.Close()

	_, err := newTestProvider(srv).ExchangeCode(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("expected error for rejected authorization code")
	}
}

func TestGoogleOAuthProvider_ExchangeCode_UserInfoError(t *testing.T) {
	tests := []struct {
		name     string
		userInfo map[string]interface{}
	}{
		{"subが空", map[string]interface{}{"name": "No Sub"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeGoogle(t, "t1", tt.userInfo)
			defer srv.Close()

			if _, err := newTestProvider(srv).ExchangeCode(context.Background(), "test-auth-code"); err == nil {
				t.Fatal("expected error for invalid user info")
			}
		})
	}
}

func TestGoogleOAuthProvider_ExchangeCode_UserInfoStatusError(t *testing.T) {
	srv := newFakeGoogle(t, "t1", map[string]interface{}{"sub": "g123"})
	defer srv.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/missing",
		HTTPClient:   srv.Client(),
	})

	if _, err := provider.ExchangeCode(context.Background(), "test-auth-code"); err == nil {
		t.Fatal("expected error for non-200 user info response")
	}
}
