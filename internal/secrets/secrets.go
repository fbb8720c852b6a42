// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads gourmet-finder credentials from a directory of
// plain-text files, one credential per file. The file name selects the
// credential and the trimmed contents are its value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// DefaultDir is the directory read when no other is configured.
const DefaultDir = ".secrets/"

// Credential file names.
const (
	APIKeyFile        = "hotpepper-api-key"
	RedisPasswordFile = "redis-password"
)

// Credentials holds the values found in a secrets directory. Empty fields
// mean the file was absent, empty, or unreadable.
type Credentials struct {
	APIKey        string
	RedisPassword string
}

// Files returns the names of the credential files that supplied a value,
// sorted.
func (c Credentials) Files() []string {
	var names []string
	if c.APIKey != "" {
		names = append(names, APIKeyFile)
	}
	if c.RedisPassword != "" {
		names = append(names, RedisPasswordFile)
	}
	sort.Strings(names)
	return names
}

// Apply fills credentials missing from cfg. Values already set by the
// config file, environment, or flags win.
func (c Credentials) Apply(cfg *types.Config) {
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = c.APIKey
	}
	if cfg.Cache.Password == "" {
		cfg.Cache.Password = c.RedisPassword
	}
}

// Load reads the credential files in dir. A missing directory or missing
// files are not errors. Unreadable credential files are logged and skipped;
// files with other names are ignored.
func Load(dir string, log *zap.Logger) (Credentials, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var creds Credentials
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var dst *string
		switch entry.Name() {
		case APIKeyFile:
			dst = &creds.APIKey
		case RedisPasswordFile:
			dst = &creds.RedisPassword
		default:
			log.Debug("ignoring unknown secrets file", zap.String("file", entry.Name()))
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn("could not read secret", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		*dst = strings.TrimSpace(string(data))
	}
	return creds, nil
}
