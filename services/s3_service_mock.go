package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

type mockObject struct {
	body        []byte
	contentType string
}

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	bucket  string
	objects map[string]mockObject
	mu      sync.RWMutex

	// UploadErr, when set, fails every UploadFile call
	UploadErr error
}

func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		bucket:  "test-bucket",
		objects: make(map[string]mockObject),
	}
}

func (m *MockS3Service) UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, contentType string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := "uploads/mock_" + fileHeader.Filename
	m.mu.Lock()
	m.objects[key] = mockObject{body: body, contentType: contentType}
	m.mu.Unlock()
	return key, nil
}

// GetPresignedURL fails for keys that were never uploaded, like a HEAD-checked presign would
func (m *MockS3Service) GetPresignedURL(ctx context.Context, s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}
	if !m.FileExists(s3Key) {
		return "", fmt.Errorf("no such key in %s: %s", m.bucket, s3Key)
	}
	return fmt.Sprintf("https://%s.s3.us-east-1.amazonaws.com/%s?mock=true", m.bucket, s3Key), nil
}

func (m *MockS3Service) DeleteFile(ctx context.Context, s3Key string) error {
	m.mu.Lock()
	delete(m.objects, s3Key)
	m.mu.Unlock()
	return nil
}

func (m *MockS3Service) FileExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[s3Key]
	return ok
}

// ContentType returns the content type an object was uploaded with
func (m *MockS3Service) ContentType(s3Key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[s3Key].contentType
}

// ObjectCount is the number of stored objects
func (m *MockS3Service) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
