// Package auth はOAuth認証フロー、ユーザーのupsert、Bearerトークン検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bookshelf/internal/model"
	"github.com/hitoshi/bookshelf/internal/repository"
)

// ErrEmptyAccessToken はプロバイダーからアクセストークンが得られなかったことを表す。
var ErrEmptyAccessToken = errors.New("provider returned empty access token")

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報とトークンを表す。
type OAuthUserInfo struct {
	ProviderUserID string
	GivenName      string
	FamilyName     string
	DisplayName    string
	AccessToken    string
	RefreshToken   string
	Provider       string // "google" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// MetricsRecorder は認証処理の結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordLogin(result string)
	RecordBearerVerification(result string)
}

// ログイン・トークン検証の結果ラベル
const (
	ResultCreated  = "created"
	ResultUpdated  = "updated"
	ResultFailed   = "failed"
	ResultResolved = "resolved"
	ResultUnknown  = "unknown"
	ResultError    = "error"
)

type noopMetrics struct{}

func (noopMetrics) RecordLogin(string) {}
func (noopMetrics) RecordBearerVerification(string) {}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceを生成する。metricsがnilの場合は記録しない。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository, metrics MetricsRecorder) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、Bearerトークンを保持したユーザーを返す。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.User, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.RecordLogin(ResultFailed)
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. ユーザーを作成または更新
	return s.UpsertUser(ctx, info)
}

// UpsertUser は外部IDでユーザーを検索し、未登録なら作成、登録済みならaccess_tokenのみを更新する。
// 1回の呼び出しで行う書き込みは作成または更新のどちらか1回だけ。
func (s *Service) UpsertUser(ctx context.Context, info *OAuthUserInfo) (*model.User, error) {
	if info.AccessToken == "" {
		s.metrics.RecordLogin(ResultFailed)
		return nil, ErrEmptyAccessToken
	}

	// 1. 外部IDで既存ユーザーを検索
	existing, err := s.userRepo.FindByExternalID(ctx, info.ProviderUserID)
	if err != nil {
		s.metrics.RecordLogin(ResultFailed)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()

	if existing != nil {
		// 2a. 既存ユーザー: トークンのみ差し替える
		user, err := s.userRepo.UpdateAccessToken(ctx, info.ProviderUserID, info.AccessToken, now)
		if err != nil {
			s.metrics.RecordLogin(ResultFailed)
			return nil, fmt.Errorf("failed to update access token: %w", err)
		}
		s.metrics.RecordLogin(ResultUpdated)
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.String("provider", info.Provider),
		)
		return user, nil
	}

	// 2b. 新規ユーザー
	firstName, lastName := splitName(info)
	user, err := s.userRepo.Create(ctx, &model.User{
		ID:          uuid.New().String(),
		UserID:      info.ProviderUserID,
		FirstName:   firstName,
		LastName:    lastName,
		AccessToken: info.AccessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.metrics.RecordLogin(ResultFailed)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordLogin(ResultCreated)
	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("provider", info.Provider),
	)
	return user, nil
}

// VerifyBearer はBearerトークンに一致するユーザーを返す。
// 該当なしやストアエラーの場合は未認証として扱い、falseを返す。
func (s *Service) VerifyBearer(ctx context.Context, token string) (*model.User, bool) {
	if token == "" {
		return nil, false
	}

	user, err := s.userRepo.FindByAccessToken(ctx, token)
	if err != nil {
		s.metrics.RecordBearerVerification(ResultError)
		slog.Error("failed to verify bearer token", slog.String("error", err.Error()))
		return nil, false
	}
	if user == nil {
		s.metrics.RecordBearerVerification(ResultUnknown)
		return nil, false
	}

	s.metrics.RecordBearerVerification(ResultResolved)
	return user, true
}

// splitName は姓名を決定する。
// given/familyが両方空の場合は表示名を最初の空白で分割する。
func splitName(info *OAuthUserInfo) (first, last string) {
	if info.GivenName != "" || info.FamilyName != "" {
		return info.GivenName, info.FamilyName
	}

	fields := strings.Fields(info.DisplayName)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
