package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// FSSource serves documents named <prefix>.nq from a file system
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource serves documents from dir inside fsys, e.g. an embed.FS
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	if dir == "" {
		dir = "."
	}
	return &FSSource{fsys: fsys, dir: dir}
}

// NewDirSource serves documents from a directory on disk
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir), ".")
}

func (s *FSSource) Fetch(ctx context.Context, prefix string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := path.Join(s.dir, DocumentName(prefix))
	if strings.ContainsAny(prefix, "/\\") || !fs.ValidPath(name) {
		return nil, fmt.Errorf("prefix %q: %w", prefix, ErrNotFound)
	}

	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("prefix %q: %w", prefix, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}
