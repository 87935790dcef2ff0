package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bookshelf/internal/middleware"
	"github.com/hitoshi/bookshelf/internal/model"
)

// LibraryServiceInterface は書籍ハンドラーが必要とするサービスインターフェース。
type LibraryServiceInterface interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	AddBook(ctx context.Context, fields map[string]any) (*model.Book, error)
}

// LibraryHandler は書籍一覧・登録のHTTPハンドラー。
type LibraryHandler struct {
	service      LibraryServiceInterface
	maxBodyBytes int64
}

// NewLibraryHandler はLibraryHandlerを生成する。maxBodyBytesは登録リクエストのボディ上限。
func NewLibraryHandler(service LibraryServiceInterface, maxBodyBytes int64) *LibraryHandler {
	return &LibraryHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

// List は全書籍をJSON配列で返す。
// GET /api/library
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// Insert はリクエストボディのJSONオブジェクトをそのまま書籍として登録する。
// 成功時は空ボディの201を返す。
// POST /api/library
func (h *LibraryHandler) Insert(w http.ResponseWriter, r *http.Request) {
	// 1. ボディをJSONオブジェクトとしてデコード
	fields, err := h.decodeBookBody(w, r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 2. 登録
	book, err := h.service.AddBook(r.Context(), fields)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	slog.Debug("library insert",
		slog.String("user_id", userID),
		slog.String("book_id", book.ID),
	)

	w.WriteHeader(http.StatusCreated)
}

// decodeBookBody はボディ上限を適用してJSONオブジェクトを1つだけ読み取る。
// 数値は精度を保つためjson.Numberのまま保持する。
func (h *LibraryHandler) decodeBookBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, h.decodeError(err, "JSONとして解析できません")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, h.decodeError(err, "JSONオブジェクトの後に余分なデータがあります")
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		return nil, model.NewInvalidBookError("JSONオブジェクトではありません")
	}
	return fields, nil
}

// decodeError はデコード失敗をボディ上限超過または不正な書籍データのAPIErrorに変換する。
func (h *LibraryHandler) decodeError(err error, reason string) *model.APIError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return model.NewBodyTooLargeError(h.maxBodyBytes)
	}
	return model.NewInvalidBookError(reason)
}
