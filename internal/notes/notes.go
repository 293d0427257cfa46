// Package notes keeps free-form per-task notes as plain text files next to
// the database. Note files are not tied to task lifetime.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultDirName = "notes"

type Dir struct {
	root string
}

func New(root string) Dir {
	return Dir{root: root}
}

func (d Dir) Path(id int) string {
	return filepath.Join(d.root, fmt.Sprintf("task_%d.txt", id))
}

// Read returns the note for id, or "" when none was saved yet.
func (d Dir) Read(id int) (string, error) {
	data, err := os.ReadFile(d.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the note for id. Trailing whitespace is dropped.
func (d Dir) Write(id int, text string) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(d.Path(id), []byte(strings.TrimRight(text, " \t\r\n")), 0o644)
}
