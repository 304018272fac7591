// Package filex contains filesystem helpers for per-user application data.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the folder created under the user data directory.
const AppDirName = "RegistroAtividades"

// userHomeDir and getenv are test seams.
var (
	userHomeDir = os.UserHomeDir
	getenv      = os.Getenv
	goos        = runtime.GOOS
)

// UserDataDir returns the per-user data directory for the application,
// outside of the install path:
//
//	windows: %APPDATA%\RegistroAtividades
//	darwin:  ~/Library/Application Support/RegistroAtividades
//	others:  ~/.local/share/RegistroAtividades
//
// The directory is not created.
func UserDataDir() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}

	var base string
	switch goos {
	case "windows":
		base = getenv("APPDATA")
		if base == "" {
			base = home
		}
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(base, AppDirName), nil
}

// EnsureDir creates dir (and parents) with owner-only permissions if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
