package attachment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reference is the opaque handle a stored attachment is addressed by. The
// workflows store it on requests without interpreting the contents.
type Reference struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Uploader interface {
	Upload(ctx context.Context, fileName string, data []byte) (Reference, error)
	Delete(ctx context.Context, id string) error
}

// LocalUploader stores attachment bytes on the local filesystem. File names
// are replaced by a uuid so caller-supplied names never touch disk paths.
type LocalUploader struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

func NewLocalUploader(dir, baseURL string, logger ...*zap.Logger) *LocalUploader {
	l := zap.L().Named("attachment.uploader")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.uploader")
	}
	return &LocalUploader{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  l,
	}
}

func (u *LocalUploader) Upload(ctx context.Context, fileName string, data []byte) (Reference, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return Reference{}, err
	}

	ext := filepath.Ext(fileName)
	id := uuid.New().String() + ext
	path := filepath.Join(u.dir, id)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Reference{}, err
	}

	u.logger.Info("attachment stored",
		zap.String("attachment_id", id),
		zap.String("original_name", fileName),
		zap.Int("size", len(data)),
	)

	return Reference{
		ID:  id,
		URL: fmt.Sprintf("%s/%s", u.baseURL, id),
	}, nil
}

func (u *LocalUploader) Delete(ctx context.Context, id string) error {
	// Reject anything that could escape the storage directory.
	if id == "" || id != filepath.Base(id) {
		return fmt.Errorf("invalid attachment id %q", id)
	}
	if err := os.Remove(filepath.Join(u.dir, id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
