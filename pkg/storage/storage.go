package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// formats maps an incoming file extension to the canonical stored format.
// jpeg collapses into jpg so downstream consumers see a single photo format.
var formats = map[string]string{
	"pdf":  "pdf",
	"jpg":  "jpg",
	"jpeg": "jpg",
	"csv":  "csv",
}

// Store lands timesheet files on disk under a fixed per-employee layout:
// <base>/<employee_id>/<year>/<month>/<timestamp>_<hash>_<name>.
type Store struct {
	baseDir string
	now     func() time.Time
}

func NewStore(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		now:     time.Now,
	}
}

// ValidateFormat reports whether the filename carries a supported extension
// and returns the canonical format when it does. Matching is case-insensitive.
func ValidateFormat(filename string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	format, ok := formats[ext]
	return format, ok
}

// Save writes content to a freshly generated path and returns the stored
// path together with the generated on-disk filename. The original name only
// survives inside the stored filename; callers keep it in metadata.
func (s *Store) Save(content []byte, originalName, employeeID string) (string, string, error) {
	if _, ok := ValidateFormat(originalName); !ok {
		return "", "", fmt.Errorf("unsupported file format: %s", originalName)
	}

	path := s.generatePath(originalName, employeeID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, filepath.Base(path), nil
}

// Delete removes a stored file. A missing file is not an error: the second
// delete of the same path reports false and leaves the filesystem untouched.
func (s *Store) Delete(path string) (bool, error) {
	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// generatePath builds a collision-resistant location for the file. The short
// hash covers name plus timestamp so two same-named files landed in the same
// second still diverge.
func (s *Store) generatePath(originalName, employeeID string) string {
	now := s.now()
	stamp := now.Format("20060102_150405")

	sum := md5.Sum([]byte(fmt.Sprintf("%s%d", originalName, now.UnixNano())))
	short := hex.EncodeToString(sum[:])[:8]

	name := fmt.Sprintf("%s_%s_%s", stamp, short, sanitizeFilename(originalName))
	return filepath.Join(s.baseDir, employeeID, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), name)
}

// sanitizeFilename keeps alphanumerics plus ". _ -" and replaces everything
// else with underscores, so the original name survives in a path-safe form.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-' || r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
