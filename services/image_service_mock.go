package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/tailor-shop-api/utils"
)

// MockImageService is an in-memory ImageService for tests
type MockImageService struct {
	uploadedImages map[string][]byte // map of image reference to file content
	mu             sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		uploadedImages: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage validates the image like the real services and keeps it in memory
func (m *MockImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if _, err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", imageError(err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ref := fmt.Sprintf("/uploads/mock-%d-%s", len(m.uploadedImages)+1, fileHeader.Filename)
	m.uploadedImages[ref] = content
	return ref, nil
}

// GetImageURL resolves a stored reference against baseURL
func (m *MockImageService) GetImageURL(ctx context.Context, ref, baseURL string) (string, error) {
	if ref == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.uploadedImages[ref]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("image not found in mock storage: %s", ref)
	}
	return baseURL + ref, nil
}

// DeleteImage drops an image from memory
func (m *MockImageService) DeleteImage(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedImages, ref)
	m.mu.Unlock()

	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedImages[ref]
	return exists
}

// Count returns the number of stored images
func (m *MockImageService) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploadedImages)
}
