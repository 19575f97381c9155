// Package workdir resolves the launcher's own directory and makes it the process working
// directory, so relative paths inside the launched application do not depend on where the
// caller's shell happened to be.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrResolveDir = errors.New("failed to resolve working directory")
	ErrEnterDir   = errors.New("failed to enter working directory")
	ErrNotADir    = errors.New("path is not a directory")
)

// ExecutableFunc returns the path of the running binary. os.Executable satisfies it.
type ExecutableFunc func() (string, error)

// LauncherDir returns the absolute directory containing the executable reported by exe, with
// symlinks evaluated so that a symlinked binary resolves to where it actually lives.
func LauncherDir(exe ExecutableFunc) (string, error) {
	if exe == nil {
		exe = os.Executable
	}

	path, err := exe()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveDir, err)
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveDir, err)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveDir, err)
	}

	return filepath.Dir(resolved), nil
}

// Resolve turns target into an absolute, cleaned directory path. An empty target means base
// itself; a relative target is joined onto base.
func Resolve(base, target string) (string, error) {
	dir := target
	switch {
	case dir == "":
		dir = base
	case !filepath.IsAbs(dir):
		dir = filepath.Join(base, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrResolveDir, dir, err)
	}
	return filepath.Clean(abs), nil
}

// Enter changes the process working directory to dir and returns the directory the process
// was in before. The previous directory is informational only; nothing restores it.
func Enter(dir string) (string, error) {
	previous, err := os.Getwd()
	if err != nil {
		previous = ""
	}

	info, err := os.Stat(dir)
	if err != nil {
		return previous, fmt.Errorf("%w %q: %w", ErrEnterDir, dir, err)
	}
	if !info.IsDir() {
		return previous, fmt.Errorf("%w %q: %w", ErrEnterDir, dir, ErrNotADir)
	}

	if err := os.Chdir(dir); err != nil {
		return previous, fmt.Errorf("%w %q: %w", ErrEnterDir, dir, err)
	}
	return previous, nil
}
