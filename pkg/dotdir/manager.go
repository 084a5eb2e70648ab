// Package dotdir manages the .folio/ and ~/.folio directories.
//
// The .folio/ directory holds the config file, uploaded documents, the
// metadata database, and the persisted vector indexes.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the folio directory.
	dirName = ".folio"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .folio/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.folio/ dir
//  3. Home ~/.folio/ dir
//  4. If none found, attempt to create ~/.folio/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating folio directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Subdir resolves a named subdirectory of the target .folio/ directory,
// creating it if necessary. Used for the uploads/ and indexes/ trees.
func (m *Manager) Subdir(overrideDir, name string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s directory: %w", name, err)
	}

	return dir, nil
}

// localDirExists checks whether a .folio/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
