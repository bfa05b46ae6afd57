package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// RunDirLayout is the timestamp format used in run container names.
const RunDirLayout = "20060102_150405"

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// CreateRunDir creates a fresh directory named prefix_<timestamp> under base.
// An existing directory is never reused: when the name is taken a -2, -3, ...
// suffix is tried instead.
func CreateRunDir(base, prefix string, now time.Time) (string, error) {
	if err := EnsureDir(base); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", base, err)
	}
	name := prefix + "_" + now.Format(RunDirLayout)
	for i := 1; i <= 100; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", name, i)
		}
		path := filepath.Join(base, candidate)
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create run dir %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("create run dir: too many runs named %s", name)
}
