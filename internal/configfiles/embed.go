// Package configfiles provides the embedded example configuration used by
// rulemap init.
package configfiles

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/verustcode/rulemap/pkg/errors"
)

//go:embed rulemap.example.yaml
var configFS embed.FS

// ExampleName is the embedded example file name
const ExampleName = "rulemap.example.yaml"

// GetExample returns the example configuration file content
func GetExample() ([]byte, error) {
	return configFS.ReadFile(ExampleName)
}

// WriteExample writes the example configuration to path. It reports false
// without touching the file when path already exists and overwrite is unset.
func WriteExample(path string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	data, err := GetExample()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, "embedded example config is missing", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, errors.Wrap(errors.ErrCodeOutputWrite, "failed to create config directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, errors.Wrap(errors.ErrCodeOutputWrite, "failed to write config file", err).
			WithDetails(map[string]string{"path": path})
	}
	return true, nil
}
