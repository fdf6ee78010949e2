// Package scan enumerates the documentation sources of a site.
package scan

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	derrors "docsite/internal/errors"
)

// DefaultExtension is the extension of documentation sources.
const DefaultExtension = ".md"

// SourceFile is one entry of a build manifest. RelativePath is relative to
// the scanned root and always uses forward slashes.
type SourceFile struct {
	RelativePath string
	IsDirectory  bool
}

// Stem is the relative path without its extension.
func (f SourceFile) Stem() string {
	return strings.TrimSuffix(f.RelativePath, path.Ext(f.RelativePath))
}

// Base is the file name without directory and extension.
func (f SourceFile) Base() string {
	return path.Base(f.Stem())
}

// HTMLPath is where the rendered page of f lives in an output tree.
func (f SourceFile) HTMLPath() string {
	return f.Stem() + ".html"
}

// Scan walks root depth-first, lexically within each directory, and returns
// every regular file whose extension matches ext (case-insensitively).
// Hidden files and directories are skipped so VCS and editor state such as
// .git never becomes pages. A root that is missing, unreadable or not a
// directory is a scan error; a root without matching files is not.
func Scan(root, ext string) ([]SourceFile, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, derrors.Scan(root, err)
	}
	if !info.IsDir() {
		return nil, derrors.Scan(root, fmt.Errorf("not a directory"))
	}

	files := make([]SourceFile, 0)
	err = filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(info.Name()), ext) {
			return nil
		}
		if !isRegular(p, info) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{RelativePath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, derrors.Scan(root, err)
	}
	return files, nil
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(p string, info os.FileInfo) bool {
	if info.Mode().IsRegular() {
		return true
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := os.Stat(p)
	return err == nil && target.Mode().IsRegular()
}
