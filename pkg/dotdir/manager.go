// Package dotdir manages the .mnemo/ and ~/.mnemo directories.
//
// The directory holds the persistent config.toml used by the CLI and the
// serve command. Resolution prefers an explicit override, then a local
// ./.mnemo/ directory, then ~/.mnemo/.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the mnemo directory.
	dirName = ".mnemo"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .mnemo/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if it does not exist)
//  2. Local ./.mnemo/ dir
//  3. Home ~/.mnemo/ dir
//
// If none of the above resolve, Target returns an empty string and no error;
// callers fall back to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating mnemo directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, dirName)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return filepath.Abs(local)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	homeDir := filepath.Join(home, dirName)
	if info, err := os.Stat(homeDir); err == nil && info.IsDir() {
		return filepath.Abs(homeDir)
	}

	return "", nil
}

// Ensure resolves the target directory like Target, but creates ~/.mnemo/
// when nothing else resolves. Used by commands that need to persist state.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil || target != "" {
		return target, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating mnemo directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}
