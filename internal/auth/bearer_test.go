package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/bookshelf/internal/model"
)

type mockVerifier struct {
	tokens map[string]*model.User
	calls  []string
}

func (m *mockVerifier) VerifyBearer(_ context.Context, token string) (*model.User, bool) {
	m.calls = append(m.calls, token)
	u, ok := m.tokens[token]
	return u, ok
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"Bearerヘッダー", "/api/me", "Bearer t1", "t1"},
		{"スキーム名は大文字小文字を区別しない", "/api/me", "bearer t1", "t1"},
		{"別スキームは無視", "/api/me", "Basic dXNlcjpwYXNz", ""},
		{"トークンなし", "/api/me", "Bearer", ""},
		{"クエリパラメータ", "/api/me?access_token=t2", "", "t2"},
		{"ヘッダーがクエリより優先", "/api/me?access_token=t2", "Bearer t1", "t1"},
		{"クレデンシャルなし", "/api/me", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBearerStrategy_Resolve(t *testing.T) {
	ada := &model.User{ID: "u-1", UserID: "g123"}
	verifier := &mockVerifier{tokens: map[string]*model.User{"t1": ada}}
	strategy := NewBearerStrategy(verifier)

	t.Run("既知のトークン", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/me", nil)
		r.Header.Set("Authorization", "Bearer t1")

		user, presented := strategy.Resolve(r)
		if !presented || user == nil || user.ID != "u-1" {
			t.Errorf("Resolve() = (%v, %v), want (u-1, true)", user, presented)
		}
	})

	t.Run("未知のトークン", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/me", nil)
		r.Header.Set("Authorization", "Bearer stale")

		user, presented := strategy.Resolve(r)
		if !presented || user != nil {
			t.Errorf("Resolve() = (%v, %v), want (nil, true)", user, presented)
		}
	})

	t.Run("トークンなしは検証しない", func(t *testing.T) {
		before := len(verifier.calls)
		r := httptest.NewRequest("GET", "/api/me", nil)

		user, presented := strategy.Resolve(r)
		if presented || user != nil {
			t.Errorf("Resolve() = (%v, %v), want (nil, false)", user, presented)
		}
		if len(verifier.calls) != before {
			t.Error("verifier should not be called without a token")
		}
	})
}
