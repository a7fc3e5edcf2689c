package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
)

//go:embed example.yaml
var exampleDocument []byte

// Example returns the document written by Init.
func Example() []byte {
	out := make([]byte, len(exampleDocument))
	copy(out, exampleDocument)
	return out
}

// Init writes the example document to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ferrors.FileSystemError("cannot access configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferrors.FileSystemError("cannot create configuration directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, exampleDocument, 0o644); err != nil {
		return ferrors.FileSystemError("cannot write configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
