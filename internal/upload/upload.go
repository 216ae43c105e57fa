// Package upload copies defense artifacts into the managed upload area.
// The core only ever records the stored path this package returns.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shokrpour/thesisflow/internal/models"
)

type Kind string

const (
	ThesisPDF      Kind = "thesis_pdf"
	FirstPageImage Kind = "first_page_image"
)

var allowedExts = map[Kind][]string{
	ThesisPDF:      {".pdf"},
	FirstPageImage: {".pdf", ".jpg", ".jpeg", ".png"},
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

type Service struct {
	dir string
}

func New(dir string) *Service {
	return &Service{dir: dir}
}

// Store copies the source file into the upload area under a collision-free
// name and returns the stored path.
func (s *Service) Store(ownerID, srcPath string, kind Kind) (string, error) {
	exts, ok := allowedExts[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown upload kind %q", models.ErrValidation, kind)
	}

	ext := strings.ToLower(filepath.Ext(srcPath))
	allowed := false
	for _, e := range exts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s only accepts %s files", models.ErrValidation, kind, strings.Join(exts, ", "))
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %s", models.ErrValidation, srcPath)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	base := sanitize(strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath)))
	stamp := time.Now().UTC().Format("20060102_150405")
	rand := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s_%s_%s%s", sanitize(ownerID), base, stamp, rand, ext)
	destPath := filepath.Join(s.dir, name)

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload %s: %w", destPath, err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to finish upload: %w", err)
	}

	return destPath, nil
}

// sanitize keeps only filename-safe characters, lowercased.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.ToLower(name)
}
