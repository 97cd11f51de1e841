package disk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtroode/imagestudio/internal/model"
)

var _ model.ImageSink = (*Sink)(nil)

// Sink writes images below a local directory.
type Sink struct {
	dir string
}

// NewSink creates a sink rooted at dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Save writes data to dir/name and returns the file path. Names that would
// escape dir are rejected.
func (s *Sink) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	target := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return target, nil
}
