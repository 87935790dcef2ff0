package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/bookshelf/internal/model"
)

const accessTokenQueryParam = "access_token"

// BearerVerifier はBearerトークンからユーザーを解決するインターフェース。
type BearerVerifier interface {
	VerifyBearer(ctx context.Context, token string) (*model.User, bool)
}

// BearerStrategy はリクエストのBearerクレデンシャルでユーザーを解決する。
type BearerStrategy struct {
	verifier BearerVerifier
}

// NewBearerStrategy はBearerStrategyを生成する。
func NewBearerStrategy(verifier BearerVerifier) *BearerStrategy {
	return &BearerStrategy{verifier: verifier}
}

// Resolve はリクエストからトークンを取り出し、ユーザーを解決する。
// presentedはトークンが提示されたかどうかを表す。
func (s *BearerStrategy) Resolve(r *http.Request) (user *model.User, presented bool) {
	token := BearerToken(r)
	if token == "" {
		return nil, false
	}
	user, ok := s.verifier.VerifyBearer(r.Context(), token)
	if !ok {
		return nil, true
	}
	return user, true
}

// BearerToken はAuthorizationヘッダー（スキーム名は大文字小文字を区別しない）から
// トークンを取り出す。ヘッダーがない場合はaccess_tokenクエリパラメータを使う。
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get(accessTokenQueryParam)
}
