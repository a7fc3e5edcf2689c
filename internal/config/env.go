package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

// envFiles are read from the directory of the configuration file, later
// files overriding earlier ones. They are never exported to the process.
var envFiles = []string{".env", ".env.local"}

// Only the braced form is expanded; a bare "$" is common in regex matchers.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// dotenvLookup returns a lookup over process variables layered on top of
// the .env files in dir. Process variables win.
func dotenvLookup(dir string) (func(string) (string, bool), error) {
	vars := map[string]string{}
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		values, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// expandEnv replaces ${NAME} references. Unset variables expand to "" and
// are returned so the caller can warn about them.
func expandEnv(data []byte, lookup func(string) (string, bool)) ([]byte, []string) {
	var missing []string
	out := envReference.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := string(ref[2 : len(ref)-1])
		v, ok := lookup(name)
		if !ok {
			missing = append(missing, name)
		}
		return []byte(v)
	})
	return out, missing
}
