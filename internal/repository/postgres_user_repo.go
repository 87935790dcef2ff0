package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/bookshelf/internal/model"
	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

const userColumns = `id, user_id, first_name, last_name, access_token, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByExternalID は外部IdPのユーザーIDでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`,
		externalID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by external ID: %w", err)
	}
	return user, nil
}

// FindByAccessToken はBearerトークンでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByAccessToken(ctx context.Context, token string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE access_token = $1`,
		token,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by access token: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成し、保存後のレコードを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, user_id, first_name, last_name, access_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		user.ID, user.UserID, user.FirstName, user.LastName, user.AccessToken, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", translateError(err))
	}
	return created, nil
}

// UpdateAccessToken はaccess_tokenのみを更新し、更新後のレコードを返す。
func (r *PostgresUserRepo) UpdateAccessToken(ctx context.Context, externalID, token string, updatedAt time.Time) (*model.User, error) {
	updated, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET access_token = $2, updated_at = $3
		 WHERE user_id = $1
		 RETURNING `+userColumns,
		externalID, token, updatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update access token: %w", translateError(err))
	}
	if updated == nil {
		return nil, fmt.Errorf("user not found: %s", externalID)
	}
	return updated, nil
}

// scanUser は1行をmodel.Userに読み込む。行が存在しない場合はnilを返す。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID,
		&user.UserID,
		&user.FirstName,
		&user.LastName,
		&user.AccessToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// translateError はドライバ固有のエラーをリポジトリのエラーに変換する。
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
