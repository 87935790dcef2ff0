package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bookshelf/internal/model"
)

func newTestUser(externalID, token string) *model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:          uuid.New().String(),
		UserID:      externalID,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		AccessToken: token,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

func TestPostgresUserRepo_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	user := newTestUser("g123", "t1")
	created, err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != user.ID || created.UserID != "g123" || created.AccessToken != "t1" {
		t.Errorf("created = %+v", created)
	}

	byExternal, err := repo.FindByExternalID(ctx, "g123")
	if err != nil {
		t.Fatalf("FindByExternalID() error = %v", err)
	}
	if byExternal == nil || byExternal.ID != user.ID {
		t.Errorf("FindByExternalID() = %+v, want id %s", byExternal, user.ID)
	}

	byToken, err := repo.FindByAccessToken(ctx, "t1")
	if err != nil {
		t.Fatalf("FindByAccessToken() error = %v", err)
	}
	if byToken == nil || byToken.FirstName != "Ada" || byToken.LastName != "Lovelace" {
		t.Errorf("FindByAccessToken() = %+v", byToken)
	}
}

func TestPostgresUserRepo_NotFound_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	user, err := repo.FindByExternalID(ctx, "missing")
	if err != nil || user != nil {
		t.Errorf("FindByExternalID() = (%v, %v), want (nil, nil)", user, err)
	}

	user, err = repo.FindByAccessToken(ctx, "missing")
	if err != nil || user != nil {
		t.Errorf("FindByAccessToken() = (%v, %v), want (nil, nil)", user, err)
	}
}

func TestPostgresUserRepo_UpdateAccessToken_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	user := newTestUser("g123", "t1")
	if _, err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	later := user.UpdatedAt.Add(time.Minute)
	updated, err := repo.UpdateAccessToken(ctx, "g123", "t2", later)
	if err != nil {
		t.Fatalf("UpdateAccessToken() error = %v", err)
	}
	if updated.ID != user.ID || updated.AccessToken != "t2" {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}
	if !updated.CreatedAt.Equal(user.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", user.CreatedAt, updated.CreatedAt)
	}

	// 古いトークンでは見つからない
	if old, err := repo.FindByAccessToken(ctx, "t1"); err != nil || old != nil {
		t.Errorf("FindByAccessToken(t1) = (%v, %v), want (nil, nil)", old, err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("users count = %d, want 1", count)
	}
}

func TestPostgresUserRepo_UpdateAccessToken_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepo(db)

	if _, err := repo.UpdateAccessToken(context.Background(), "missing", "t1", time.Now()); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestPostgresUserRepo_Create_Duplicate(t *testing.T) {
	tests := []struct {
		name   string
		second *model.User
	}{
		{"同じ外部ID", newTestUser("g123", "t2")},
		{"同じトークン", newTestUser("g456", "t1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewPostgresUserRepo(db)
			ctx := context.Background()

			if _, err := repo.Create(ctx, newTestUser("g123", "t1")); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			_, err := repo.Create(ctx, tt.second)
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("Create() error = %v, want ErrDuplicate", err)
			}
		})
	}
}
