// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/bookshelf/internal/model"
)

// ErrDuplicate は一意制約違反を表す。
// users.user_id、users.access_tokenの重複時に返される。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByExternalID は外部IdPのユーザーIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)

	// FindByAccessToken はBearerトークンでユーザーを検索する。見つからない場合はnilを返す。
	FindByAccessToken(ctx context.Context, token string) (*model.User, error)

	// Create はユーザーを作成し、保存後のレコードを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateAccessToken は外部IdPのユーザーIDに一致するユーザーのaccess_tokenのみを更新し、
	// 更新後のレコードを返す。
	UpdateAccessToken(ctx context.Context, externalID, token string, updatedAt time.Time) (*model.User, error)
}

// BookRepository は書籍データの永続化インターフェース。
type BookRepository interface {
	// List は全書籍を返す。0件の場合は空スライスを返す。
	List(ctx context.Context) ([]model.Book, error)

	// Create は書籍を作成する。
	Create(ctx context.Context, book *model.Book) error
}
