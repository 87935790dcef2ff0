// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/bookshelf/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// IdentityResolver はリクエストのクレデンシャルからユーザーを解決する戦略。
// presentedはクレデンシャルが提示されたかどうかを表す。
type IdentityResolver interface {
	Resolve(r *http.Request) (user *model.User, presented bool)
}

// NewAuthGate はリゾルバでユーザーを解決し、解決できたリクエストだけを通すミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// 未認証リクエストにはWWW-Authenticateヘッダー付きの401 Unauthorizedを返す。
func NewAuthGate(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. クレデンシャルからユーザーを解決
			user, presented := resolver.Resolve(r)
			if user == nil {
				WriteUnauthorized(w, presented)
				return
			}

			// 2. リクエストログにユーザーIDを記録
			annotateRequestUser(r.Context(), user.ID)

			// 3. 認証済みユーザーをコンテキストに注入
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ゲートを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, err := UserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
