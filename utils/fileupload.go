package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024

	// UploadURLPrefix is the path local images are served under
	UploadURLPrefix = "/uploads/"

	imageFormatMessage = "Only JPEG/PNG images are allowed!"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile checks size, extension, declared MIME type and the
// sniffed content of an uploaded image. It returns the detected MIME type.
func ValidateImageFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxFileSize {
		return "", &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	invalid := &FileUploadError{Code: "INVALID_FILE_FORMAT", Message: imageFormatMessage}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return "", invalid
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(fileHeader.Header.Get("Content-Type"), ";")[0]))
	if !allowedImageTypes[declared] {
		return "", invalid
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to inspect uploaded file: %w", err)
	}
	if !allowedImageTypes[detected.String()] {
		return "", invalid
	}
	return detected.String(), nil
}

// SaveUploadedFile saves the uploaded file to uploadDir under a
// "<unixnano>-<name>" filename and returns that filename
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir string) (filename string, err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename = fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
	fullPath := filepath.Join(uploadDir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

// ResolveUploadPath maps a bare filename to its path inside uploadDir,
// rejecting anything that would escape the directory
func ResolveUploadPath(uploadDir, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", &FileUploadError{Code: "INVALID_FILENAME", Message: "Invalid file name"}
	}
	return filepath.Join(uploadDir, filename), nil
}

// DeleteUploadedFile removes filename from uploadDir. A missing file is not an error.
func DeleteUploadedFile(uploadDir, filename string) error {
	path, err := ResolveUploadPath(uploadDir, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetImageURL returns the URL path for accessing the uploaded image
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return UploadURLPrefix + filename
}
