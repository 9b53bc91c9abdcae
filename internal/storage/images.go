// Package storage keeps uploaded product images on local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrImageTooLarge   = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Images struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

func NewImages(dir string, maxBytes int64) (*Images, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Images{Dir: dir, URLPrefix: "/uploads", MaxBytes: maxBytes}, nil
}

// Save stores the upload under a random name and returns its public URL and disk path.
func (s *Images) Save(fh *multipart.FileHeader) (string, string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, fh.Size, s.MaxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ctype := http.DetectContentType(head)
	ext, ok := allowedTypes[ctype]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, ctype)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.Dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create image file: %w", err)
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head), src), limit+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && written > s.MaxBytes {
		err = ErrImageTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", "", fmt.Errorf("write image: %w", err)
	}

	return s.URLPrefix + "/" + name, path, nil
}

func (s *Images) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
