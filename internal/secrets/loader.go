// Package secrets resolves the credentials the app needs at startup, such as
// the Gemini API key and the browser login, from files or inline config
// values without logging them.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a single credential comes from.
type Source struct {
	// Name labels the credential in error messages ("gemini api key",
	// "browser password").
	Name string
	// Value is an inline value from configuration or flags. Prefer File;
	// inline values end up committed in config files more easily.
	Value string
	// File points to a file holding the credential. When set it takes
	// precedence over Value.
	File string
}

// Load resolves the credential described by src. File wins over Value, and
// the result is trimmed so a trailing newline in a key file does not leak
// into API requests. The error names the credential when neither field
// yields a usable value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
