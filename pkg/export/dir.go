package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/vango-dev/tessera/internal/errors"
)

// DirSink writes pages to files under a root directory.
type DirSink struct {
	root string
}

// NewDirSink creates a DirSink, creating root if needed.
func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.New("E180").Wrap(err)
	}
	return &DirSink{root: root}, nil
}

// Root returns the root directory.
func (s *DirSink) Root() string {
	return s.root
}

// Put writes r to root/p. The file is written to a temporary name and
// renamed into place, so readers never see a partial page.
func (s *DirSink) Put(ctx context.Context, p, _ string, r io.Reader) error {
	clean, err := CleanPath(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dest := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
