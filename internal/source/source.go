package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFileBytes bounds how much of a single file is read.
const MaxFileBytes = 2 * 1024 * 1024

var ErrTooLarge = errors.New("file exceeds size limit")

// File is an uploaded or on-disk source file.
type File struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Ext     string `json:"ext"`
	Content string `json:"-"`
}

type Diagnostics struct {
	Warnings []string
}

// ExtOf returns the text after the last '.' in name, lowercased. A name
// without a dot is returned whole, lowercased.
func ExtOf(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return strings.ToLower(base[i+1:])
	}
	return strings.ToLower(base)
}

// FromString wraps in-memory content, e.g. an upload body.
func FromString(name, content string) File {
	return File{Name: filepath.Base(name), Ext: ExtOf(name), Content: content}
}

// Load reads one file, refusing anything above MaxFileBytes.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, MaxFileBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(buf) > MaxFileBytes {
		return File{}, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	file := FromString(path, string(buf))
	file.Path = filepath.Clean(path)
	return file, nil
}

// Walk collects files under root whose extension satisfies keep. Binary
// files, oversized files and vendored directories are skipped with a warning.
func Walk(root string, keep func(ext string) bool) ([]File, Diagnostics) {
	var files []File
	diags := Diagnostics{}

	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			diags.Warnings = append(diags.Warnings, err.Error())
			return nil
		}
		if d.IsDir() {
			if p != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if keep != nil && !keep(ExtOf(d.Name())) {
			return nil
		}
		f, lerr := Load(p)
		if lerr != nil {
			diags.Warnings = append(diags.Warnings, lerr.Error())
			return nil
		}
		if !isLikelyText([]byte(f.Content)) {
			diags.Warnings = append(diags.Warnings, p+": skipped binary file")
			return nil
		}
		files = append(files, f)
		return nil
	})

	if len(files) == 0 {
		diags.Warnings = append(diags.Warnings, "no supported source files found")
	}
	return files, diags
}

func shouldSkipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "dist", "build", "__pycache__", ".venv", "target":
		return true
	default:
		return false
	}
}

func isLikelyText(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	if bytes.IndexByte(b, 0x00) >= 0 {
		return false
	}
	return utf8.Valid(b)
}
