package ruletree

import (
	"os"

	"go.uber.org/zap"

	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
)

// LoadFile reads and decodes the export at path. Only WithMaxDepth applies
// while decoding.
func LoadFile(path string, opts ...Option) (*Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputRead, "failed to open rule tree export", err).
			WithDetails(map[string]string{"path": path})
	}
	defer f.Close()

	v, err := DecodeWithOptions(f, opts...)
	if errors.HasCode(err, errors.ErrCodeTreeDepth) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputParse, "rule tree export is not valid JSON", err).
			WithDetails(map[string]string{"path": path})
	}

	logger.Debug("Loaded rule tree export",
		zap.String("path", path),
		zap.String("root_kind", v.Kind.String()),
	)
	return v, nil
}

// Load reads, classifies and flattens the export at path in one call.
func Load(path string, opts ...Option) (Result, error) {
	v, err := LoadFile(path, opts...)
	if err != nil {
		return Result{}, err
	}
	root, err := Parse(v, opts...)
	if err != nil {
		return Result{}, err
	}
	return Flatten(root, opts...)
}
