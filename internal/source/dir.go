package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	pathpkg "path"
	"strings"
)

// Dir loads source documents from a file system, usually os.DirFS of the site root.
type Dir struct {
	fsys fs.FS
	log  *slog.Logger
}

func NewDir(fsys fs.FS, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dir{fsys: fsys, log: logger}
}

// Load reads path. A missing file is reported the same way as a malformed one.
// Leading slashes and "./" elements are dropped, so "./noticias/x.json" and
// "/noticias/x.json" both resolve to "noticias/x.json".
func (d *Dir) Load(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Failed(path, err)
	}

	name := pathpkg.Clean(strings.TrimLeft(path, "/"))
	body, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		d.log.Debug("source read failed", slog.String("path", path), slog.Any("err", err))
		return Failed(path, err)
	}

	res := Decode(body)
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", path, res.Err)
		d.log.Debug("source decode failed", slog.String("path", path), slog.Any("err", res.Err))
	}
	return res
}
