package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/bookshelf/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
// 書籍のフィールドはjsonbカラムdataにそのまま保存する。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

// List は全書籍を登録順に返す。
func (r *PostgresBookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data, created_at FROM books ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		var (
			book model.Book
			data []byte
		)
		if err := rows.Scan(&book.ID, &data, &book.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		if err := decodeBookData(data, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// Create は書籍を作成する。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	fields := book.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode book data: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO books (id, data, created_at) VALUES ($1, $2, $3)`,
		book.ID, data, book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", translateError(err))
	}
	return nil
}

// decodeBookData はjsonbの内容をBook.Fieldsに展開する。
// 数値は精度を保つためjson.Numberとして保持する。
func decodeBookData(data []byte, book *model.Book) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("failed to decode book %s: %w", book.ID, err)
	}
	book.Fields = fields
	return nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
