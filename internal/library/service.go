// Package library は書籍ライブラリのドメインロジックを提供する。
package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bookshelf/internal/model"
	"github.com/hitoshi/bookshelf/internal/repository"
)

// MetricsRecorder は書籍登録件数を記録するインターフェース。
type MetricsRecorder interface {
	RecordBooksInserted(n int)
}

// Service は書籍一覧取得と書籍登録のサービス層。
type Service struct {
	bookRepo repository.BookRepository
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnil可。
func NewService(bookRepo repository.BookRepository, metrics MetricsRecorder) *Service {
	return &Service{
		bookRepo: bookRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ListBooks は登録済みの全書籍を返す。0件の場合は空スライスを返す。
func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗しました: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// AddBook は呼び出し元が送信したフィールドをそのまま書籍として登録する。
// IDはサーバー側で生成するため、fieldsにidが含まれている場合はエラーを返す。
func (s *Service) AddBook(ctx context.Context, fields map[string]any) (*model.Book, error) {
	if fields == nil {
		return nil, model.NewInvalidBookError("JSONオブジェクトではありません")
	}
	if _, ok := fields[model.BookIDField]; ok {
		return nil, model.NewInvalidBookError("idは指定できません")
	}

	book := &model.Book{
		ID:        uuid.New().String(),
		Fields:    fields,
		CreatedAt: s.now(),
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("書籍の登録に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordBooksInserted(1)
	}
	slog.Info("book inserted",
		slog.String("book_id", book.ID),
		slog.Int("fields", len(fields)),
	)
	return book, nil
}
