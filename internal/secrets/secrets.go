// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads operator settings that should not live in the config
// file from a directory of plain-text files. Each file is one secret: the
// filename is the key and the trimmed contents are the value.
//
// Recognized keys: contact-email (added to the User-Agent sent to search
// providers and fetched sites) and user-agent (replaces it entirely).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	KeyContactEmail = "contact-email"
	KeyUserAgent    = "user-agent"
)

// Secrets maps key names to values.
type Secrets map[string]string

// ContactEmail returns the operator contact address, or "".
func (s Secrets) ContactEmail() string { return s[KeyContactEmail] }

// UserAgent returns the User-Agent override, or "".
func (s Secrets) UserAgent() string { return s[KeyUserAgent] }

// Load reads all files in dir. A missing directory or missing files are not
// errors; Load returns an empty map. Unreadable files are logged and
// skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop()
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
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
