// Package errors classifies failures of the site build pipeline.
//
// Every failure carries a Kind and the source-relative path it concerns.
// Scan and write failures abort a build; read and render failures only
// skip the file they belong to.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
)

// Kind is the pipeline stage a failure originated from.
type Kind string

const (
	KindScan   Kind = "scan"
	KindRead   Kind = "read"
	KindRender Kind = "render"
	KindWrite  Kind = "write"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path == "" && e.Err == nil:
		return fmt.Sprintf("%s error", e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Path)
	case e.Path == "":
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target without a path
// matches any path, which is what the Err* sentinels rely on.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}

// Sentinels for errors.Is checks.
var (
	ErrScan   = &Error{Kind: KindScan}
	ErrRead   = &Error{Kind: KindRead}
	ErrRender = &Error{Kind: KindRender}
	ErrWrite  = &Error{Kind: KindWrite}
)

func Scan(path string, err error) error   { return &Error{Kind: KindScan, Path: path, Err: err} }
func Read(path string, err error) error   { return &Error{Kind: KindRead, Path: path, Err: err} }
func Render(path string, err error) error { return &Error{Kind: KindRender, Path: path, Err: err} }
func Write(path string, err error) error  { return &Error{Kind: KindWrite, Path: path, Err: err} }

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsFatal reports whether err must stop a whole build. Unclassified errors
// are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	return kind == KindScan || kind == KindWrite
}

// HTTPStatus maps a failure to the status a serve request should answer with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if kind, ok := KindOf(err); ok && kind == KindRead && stderrors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
