// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads source-adapter credentials from a directory of
// plain-text files. Each file is one credential: the filename is the key
// name and the trimmed contents are the value.
//
// Known key files: semantic-scholar-api-key, openalex-email. Unknown
// files still load, so a new adapter can ship its key name without a
// change here, but they draw a warning so a typo in a key filename is
// visible instead of silently ignored by every adapter.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key names consumed by the configured source adapters.
const (
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyOpenAlexEmail   = "openalex-email"
)

var knownKeys = map[string]bool{
	KeySemanticScholar: true,
	KeyOpenAlexEmail:   true,
}

// Load reads every file in dir into a key→value map. A missing directory
// is not an error; the pipeline runs unauthenticated at lower rate
// limits. Dotfiles and empty files are skipped. Unreadable or unknown
// files produce a warning on w but never abort.
func Load(dir string, w io.Writer) (map[string]string, error) {
	if w == nil {
		w = io.Discard
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
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
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		if !knownKeys[name] {
			fmt.Fprintf(w, "warning: unrecognized secret %s, no adapter will use it\n", name)
		}
		secrets[name] = value
	}

	return secrets, nil
}
