package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/tailor-shop-api/utils"
)

// ImageService handles all image-related operations including upload, retrieval, and deletion
type ImageService interface {
	// UploadImage validates and stores an image file, returns the storage reference
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL turns a storage reference into a URL a browser can load.
	// baseURL is "<scheme>://<host>" of the current request.
	GetImageURL(ctx context.Context, ref, baseURL string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, ref string) error
}

var imageServiceInstance ImageService

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// imageError converts an upload validation failure into an InvalidField error
func imageError(err error) error {
	if uploadErr, ok := err.(*utils.FileUploadError); ok {
		return invalidField(uploadErr.Code, uploadErr.Message)
	}
	return err
}

// LocalImageService stores images on the local filesystem and serves them
// under /uploads/
type LocalImageService struct {
	dir string
}

// NewLocalImageService creates an image service writing into dir
func NewLocalImageService(dir string) *LocalImageService {
	return &LocalImageService{dir: dir}
}

// Dir returns the directory images are stored in
func (s *LocalImageService) Dir() string {
	return s.dir
}

func (s *LocalImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if _, err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", imageError(err)
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return utils.GetImageURL(filename), nil
}

func (s *LocalImageService) GetImageURL(ctx context.Context, ref, baseURL string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return strings.TrimSuffix(baseURL, "/") + ref, nil
}

func (s *LocalImageService) DeleteImage(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := utils.DeleteUploadedFile(s.dir, strings.TrimPrefix(ref, utils.UploadURLPrefix)); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an image service backed by s3Service
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	contentType, err := utils.ValidateImageFile(fileHeader)
	if err != nil {
		return "", imageError(err)
	}

	s3Key, err := s.s3Service.UploadFile(ctx, fileHeader, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, ref, baseURL string) (string, error) {
	if ref == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
