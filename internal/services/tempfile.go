package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
)

// DefaultMaxUploadSize caps a single uploaded document at 1 MiB.
const DefaultMaxUploadSize int64 = 1 << 20

// allowedUploadExtensions is the accepted set for uploaded documents.
var allowedUploadExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".rtf":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// TempFileService writes uploaded documents to scoped temporary files that
// live only as long as the request that produced them.
type TempFileService interface {
	Materialize(file *multipart.FileHeader) (path string, cleanup func(), err error)
}

type tempFileService struct {
	dir     string
	maxSize int64
	logger  *zap.Logger
}

func NewTempFileService(maxSize int64, log *zap.Logger) TempFileService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &tempFileService{
		dir:     os.TempDir(),
		maxSize: maxSize,
		logger:  log,
	}
}

// Materialize validates the upload's extension and size, writes it to a
// uniquely named temporary file, and returns the path with a cleanup that
// removes the file. Callers must always run the cleanup on scope exit.
func (s *tempFileService) Materialize(file *multipart.FileHeader) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		return "", nil, fmt.Errorf("%w: %q", documents.ErrUnsupportedType, ext)
	}

	if file.Size > s.maxSize {
		return "", nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, file.Size, s.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	path := filepath.Join(s.dir, fmt.Sprintf("upload_%s_%s", uuid.New().String(), filepath.Base(file.Filename)))

	dst, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to remove temporary upload",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	return path, cleanup, nil
}
