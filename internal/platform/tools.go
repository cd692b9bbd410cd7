// Package platform locates the external tool binaries the pipeline shells
// out to.
package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindTool resolves a tool binary. A non-empty override must point at an
// executable file; otherwise the name is looked up on PATH.
func FindTool(override, name string) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		if strings.ContainsRune(trimmed, os.PathSeparator) {
			if err := EnsureExecutable(trimmed); err != nil {
				return "", fmt.Errorf("%s override %q is not executable: %w", name, trimmed, err)
			}
			return filepath.Clean(trimmed), nil
		}
		name = trimmed
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	return path, nil
}

// EnsureExecutable checks that path exists, is a regular file, and carries an
// execute bit.
func EnsureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
