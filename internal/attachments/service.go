// Package attachments stores uploaded evidence files (dismantle and
// maintenance photos, invoices) on disk and hands back addressable paths.
package attachments

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/logger"
)

// allowedPrefixes are the content types evidence uploads may carry.
var allowedPrefixes = []string{"image/", "application/pdf"}

// Service stores attachment files.
type Service struct {
	dir     string
	maxSize int64
	logg    *logger.Logger
}

// NewService builds the attachment store rooted at dir.
func NewService(dir string, maxSize int64, logg *logger.Logger) (*Service, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("attachments dir required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachments dir: %w", err)
	}
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &Service{dir: dir, maxSize: maxSize, logg: logg}, nil
}

// Save sniffs and stores one file, returning its addressable path. The
// stored name is a uuid with the sniffed extension; the original filename is
// never trusted.
func (s *Service) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "empty file")
	}
	if int64(len(data)) > s.maxSize {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file exceeds size limit")
	}

	detected := mimetype.Detect(data)
	allowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(detected.String(), prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported content type %s", detected.String()))
	}

	name := uuid.New().String() + detected.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write attachment")
	}

	s.logg.Info(s.logg.WithField(ctx, "original_name", filename), "attachment stored")
	return "/attachments/" + name, nil
}

// Open reads a stored attachment back by its addressable path.
func (s *Service) Open(ctx context.Context, path string) ([]byte, error) {
	name := strings.TrimPrefix(path, "/attachments/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment path")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read attachment")
	}
	return data, nil
}
