package store

import (
	"fmt"
	"os"
)

// Bootstrap creates the output directories. Existing directories are left untouched.
func (l Layout) Bootstrap() error {
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", d, err)
		}
	}

	return nil
}
