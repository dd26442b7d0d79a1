package lists

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

// FileResolver reads catalog lists from a directory.
type FileResolver struct {
	Dir     string
	Catalog Catalog
}

// NewFileResolver creates a resolver rooted at dir using the default catalog.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{Dir: dir, Catalog: DefaultCatalog()}
}

// Path returns the on-disk location of list id.
func (r *FileResolver) Path(id string) (string, error) {
	file, ok := r.Catalog.File(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownList, id)
	}
	return filepath.Join(r.Dir, filepath.FromSlash(file)), nil
}

func (r *FileResolver) Resolve(ctx context.Context, id string) ([]dictionary.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.Path(id)
	if err != nil {
		return nil, err
	}
	records, err := dictionary.LoadList(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("lists: load %s: %w", path, err)
	}
	return records, nil
}
