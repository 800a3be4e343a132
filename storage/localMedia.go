package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"civic-issues-be/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the route the upload directory is served under.
const URLPrefix = "/uploads"

// LocalMedia keeps uploaded issue photos on the local filesystem.
type LocalMedia struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
}

func NewLocalMedia(dir string, maxBytes int64, log *zap.Logger) (*LocalMedia, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalMedia{dir: dir, maxBytes: maxBytes, log: log}, nil
}

func (m *LocalMedia) Dir() string {
	return m.dir
}

// Check validates count, size and sniffed content type of every file.
func (m *LocalMedia) Check(files []*multipart.FileHeader) []models.FieldError {
	var errs []models.FieldError
	if len(files) > models.MaxImages {
		errs = append(errs, models.NewFieldError("images",
			fmt.Sprintf("A maximum of %d images is allowed", models.MaxImages)))
	}
	for _, fh := range files {
		if m.maxBytes > 0 && fh.Size > m.maxBytes {
			errs = append(errs, models.NewFieldError("images",
				fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, m.maxBytes)))
			continue
		}
		mtype, err := detect(fh)
		if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
			errs = append(errs, models.NewFieldError("images",
				fmt.Sprintf("%s: only image files are allowed", fh.Filename)))
		}
	}
	return errs
}

func detect(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

// Save writes every file under a fresh unique name, in order. If any
// write fails the files already written are removed.
func (m *LocalMedia) Save(files []*multipart.FileHeader) ([]models.Image, error) {
	images := make([]models.Image, 0, len(files))
	for _, fh := range files {
		img, err := m.saveOne(fh)
		if err != nil {
			m.Remove(images)
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (m *LocalMedia) saveOne(fh *multipart.FileHeader) (models.Image, error) {
	mtype, err := detect(fh)
	if err != nil {
		return models.Image{}, fmt.Errorf("sniff %s: %w", fh.Filename, err)
	}
	name := uuid.NewString() + mtype.Extension()

	src, err := fh.Open()
	if err != nil {
		return models.Image{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	path := filepath.Join(m.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return models.Image{}, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return models.Image{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return models.Image{}, fmt.Errorf("close %s: %w", path, err)
	}

	return models.Image{URL: URLPrefix + "/" + name, Filename: name}, nil
}

// Remove deletes stored files. Failures are logged, not returned.
func (m *LocalMedia) Remove(images []models.Image) {
	for _, img := range images {
		path := filepath.Join(m.dir, filepath.Base(img.Filename))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.log.Warn("failed to remove upload", zap.String("path", path), zap.Error(err))
		}
	}
}
