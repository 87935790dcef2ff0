// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// UserIDは外部IdP（Google）のユーザー識別子で、ユーザーごとに一意。
// AccessTokenは現在有効なBearerトークンで、再ログインのたびに上書きされる。
type User struct {
	ID          string
	UserID      string
	FirstName   string
	LastName    string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile は/api/meで返却する公開フィールドを表す。
// AccessTokenは含めない。
type Profile struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile はユーザーの公開プロフィールを返す。
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
