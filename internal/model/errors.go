package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, library, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidBook      = "INVALID_BOOK"
	ErrCodeBodyTooLarge     = "BODY_TOO_LARGE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidBookError は書籍データが不正な場合のエラーを生成する。
func NewInvalidBookError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBook,
		Message:  fmt.Sprintf("書籍データが不正です: %s", reason),
		Category: "validation",
		Action:   "JSONオブジェクト形式で書籍データを送信してください。",
	}
}

// NewBodyTooLargeError はリクエストボディが上限を超えた場合のエラーを生成する。
func NewBodyTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodeBodyTooLarge,
		Message:  fmt.Sprintf("リクエストボディが大きすぎます（上限 %d バイト）。", limit),
		Category: "validation",
		Action:   "データを小さくしてから再度お試しください。",
	}
}

// NewNotFoundError は存在しないAPIパスへのアクセスエラーを生成する。
func NewNotFoundError(path string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定されたパスは存在しません: %s", path),
		Category: "system",
		Action:   "URLを確認してください。",
	}
}

// NewMethodNotAllowedError は許可されていないHTTPメソッドのエラーを生成する。
func NewMethodNotAllowedError(method string) *APIError {
	return &APIError{
		Code:     ErrCodeMethodNotAllowed,
		Message:  fmt.Sprintf("許可されていないメソッドです: %s", method),
		Category: "system",
		Action:   "GETまたはHEADでアクセスしてください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError(retryAfterSec int) *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   fmt.Sprintf("%d秒ほど待ってから再度お試しください。", retryAfterSec),
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
