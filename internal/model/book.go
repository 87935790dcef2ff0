package model

import (
	"encoding/json"
	"time"
)

// BookIDField は書籍レコードのIDを表すJSONフィールド名。
const BookIDField = "id"

// Book はライブラリに登録された書籍を表す。
// Fieldsには呼び出し元が送信したJSONオブジェクトをそのまま保持する。
type Book struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
}

// MarshalJSON はFieldsにidを加えたフラットなJSONオブジェクトを出力する。
func (b Book) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+1)
	for k, v := range b.Fields {
		out[k] = v
	}
	out[BookIDField] = b.ID
	return json.Marshal(out)
}
