// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: shutdown-token.
package secrets

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ShutdownToken is the secret that guards POST /shutdown.
const ShutdownToken = "shutdown-token"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir and returns their trimmed contents by
// filename. A missing directory is not an error; Load returns an empty set.
// Unreadable files are logged and skipped.
func Load(dir string, logger *slog.Logger) (Secrets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Check reports whether got matches the secret named key. When the secret
// is not configured every value is accepted.
func (s Secrets) Check(key, got string) bool {
	want, ok := s[key]
	if !ok {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
