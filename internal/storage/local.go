// AngelaMos | 2026
// local.go

package storage

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage dir is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, pdfPrefix), 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/files"
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (l *LocalStore) Store(
	_ context.Context,
	data []byte,
	_ string,
	filename string,
) (string, error) {
	name := objectName(filename)
	target := filepath.Join(l.dir, pdfPrefix, name)

	if err := os.WriteFile(target, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	return l.urlPrefix + "/" + pdfPrefix + "/" + name, nil
}

func (l *LocalStore) URLPrefix() string {
	return l.urlPrefix
}

// Handler serves stored files under URLPrefix. Directories are never
// listed; object names are only learned through lesson responses.
func (l *LocalStore) Handler() http.Handler {
	return http.StripPrefix(l.urlPrefix, http.FileServer(filesOnly{http.Dir(l.dir)}))
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}
