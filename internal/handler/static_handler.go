package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/hitoshi/bookshelf/internal/model"
)

const spaIndexFile = "index.html"

// StaticHandler はビルド済みクライアントを配信する。
// 存在するファイルはそのまま返し、それ以外のパスにはindex.htmlを返す。
type StaticHandler struct {
	fsys fs.FS
}

// NewStaticHandler はStaticHandlerを生成する。
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{fsys: fsys}
}

// ServeHTTP はGET/HEADに対して静的ファイルまたはindex.htmlを返す。
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, model.NewMethodNotAllowedError(r.Method))
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && h.isFile(name) {
		http.ServeFileFS(w, r, h.fsys, name)
		return
	}

	if !h.isFile(spaIndexFile) {
		slog.Warn("client bundle not found", slog.String("file", spaIndexFile))
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, h.fsys, spaIndexFile)
}

// isFile はnameが通常ファイルとして存在するかを返す。
func (h *StaticHandler) isFile(name string) bool {
	info, err := fs.Stat(h.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to stat static file",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
		return false
	}
	return info.Mode().IsRegular()
}
