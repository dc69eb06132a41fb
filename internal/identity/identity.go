// Package identity manages the per-device student ID.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileName = "student_id"

// Load returns the student ID stored in dir, creating and saving a new one
// on first use. A non-empty override is returned as-is and nothing is read
// or written.
func Load(dir, override string) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		return id, nil
	}

	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read student id: %w", err)
	}

	id := "student_" + uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("save student id: %w", err)
	}
	return id, nil
}
