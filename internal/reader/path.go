package reader

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// normalizePath expands a leading ~ or ~user and makes the path absolute.
func normalizePath(path string) (string, error) {
	expanded, err := expandUser(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", path, err)
	}
	return abs, nil
}

func expandUser(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	name, rest, _ := strings.Cut(path[1:], string(filepath.Separator))

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand %s: %w", path, err)
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			// unknown user: leave the path untouched
			return path, nil
		}
		home = u.HomeDir
	}
	return filepath.Join(home, rest), nil
}

// splitExt splits the final extension off path the way the registry sees
// it: the extension starts at the last dot of the base name, and a base name
// whose only dot is leading (".hidden") has no extension.
func splitExt(path string) (root, ext string) {
	ext = filepath.Ext(path)
	base := filepath.Base(path)
	if ext == "" || strings.TrimLeft(base, ".") == strings.TrimLeft(ext, ".") {
		return path, ""
	}
	return path[:len(path)-len(ext)], ext
}
