// Package workspace is the file collaborator of the compiler: it reads Quanta
// sources and writes generated Python, jailed to a root directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscape   = errors.New("workspace: path escape violation")
	ErrFileTooLarge = errors.New("workspace: file size limit exceeded")
)

const (
	DefaultSource      = "index.quanta"
	DefaultMaxFileSize = 1 << 20

	SourceExt = ".quanta"
	TargetExt = ".py"
)

type Workspace struct {
	Root        string
	MaxFileSize int
}

// New jails all file access under root. A maxFileSize <= 0 selects
// DefaultMaxFileSize.
func New(root string, maxFileSize int) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Workspace{
		Root:        absRoot,
		MaxFileSize: maxFileSize,
	}, nil
}

// TargetName maps a source file name to the name of its generated file:
// "dir/x.quanta" becomes "dir/x.py". Other extensions are replaced too.
func TargetName(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + TargetExt
}

// resolve joins name onto the root and rejects anything that lands outside it.
func (w *Workspace) resolve(name string) (string, error) {
	cleanPath := filepath.Join(w.Root, filepath.Clean(name))
	rel, err := filepath.Rel(w.Root, cleanPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, name)
	}
	return cleanPath, nil
}

// ReadSource returns the contents of the named file.
func (w *Workspace) ReadSource(name string) (string, error) {
	path, err := w.resolve(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	if info.Size() > int64(w.MaxFileSize) {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, name, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	return string(data), nil
}

// WriteTarget writes generated text to the named file, creating parent
// directories as needed.
func (w *Workspace) WriteTarget(name, text string) error {
	return w.write(name, text)
}

// WriteSource saves Quanta source, as produced by the drafting assistant.
func (w *Workspace) WriteSource(name, text string) error {
	return w.write(name, text)
}

func (w *Workspace) write(name, text string) error {
	path, err := w.resolve(name)
	if err != nil {
		return err
	}
	if len(text) > w.MaxFileSize {
		return fmt.Errorf("%w: %s would be %d bytes", ErrFileTooLarge, name, len(text))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	return nil
}
