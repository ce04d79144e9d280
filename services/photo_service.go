package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kapehan/kiosk-pos-api/utils"
)

// Compressor is the image-processing collaborator: a pure function from
// raw image bytes to compressed bytes. The API does not implement
// compression itself; deployments plug in whatever processor they use.
type Compressor func(raw []byte) ([]byte, error)

// PassthroughCompressor stores images as uploaded.
func PassthroughCompressor(raw []byte) ([]byte, error) {
	return raw, nil
}

// PhotoService handles menu item photo upload, retrieval, and deletion
type PhotoService interface {
	// UploadPhoto validates, compresses and stores a photo, returning the storage key
	UploadPhoto(fileHeader *multipart.FileHeader) (string, error)

	// GetPhotoURL generates a URL for accessing a stored photo
	GetPhotoURL(key string) (string, error)

	// DeletePhoto removes a photo from storage
	DeletePhoto(key string) error
}

// S3PhotoService implements PhotoService on top of S3 object storage
type S3PhotoService struct {
	s3Service S3Interface
	compress  Compressor
}

var photoServiceInstance PhotoService

// InitPhotoService initializes the photo service with an S3 backend and
// a compressor
func InitPhotoService(s3Service S3Interface, compress Compressor) PhotoService {
	if compress == nil {
		compress = PassthroughCompressor
	}
	photoServiceInstance = &S3PhotoService{
		s3Service: s3Service,
		compress:  compress,
	}
	return photoServiceInstance
}

// GetPhotoService returns the initialized photo service instance
func GetPhotoService() PhotoService {
	return photoServiceInstance
}

// SetPhotoService sets the photo service instance (primarily for testing)
func SetPhotoService(service PhotoService) {
	photoServiceInstance = service
}

// UploadPhoto validates the file, runs it through the compressor and
// stores the result under menu-photos/{uuid}{ext}.
func (s *S3PhotoService) UploadPhoto(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	compressed, err := s.compress(raw)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("menu-photos/%s%s", uuid.NewString(), ext)

	contentType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		contentType = "image/jpeg"
	}

	if err := s.s3Service.UploadBytes(key, compressed, contentType); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

// GetPhotoURL generates a presigned URL for a stored photo
func (s *S3PhotoService) GetPhotoURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(key)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo URL: %w", err)
	}
	return url, nil
}

// DeletePhoto deletes a stored photo
func (s *S3PhotoService) DeletePhoto(key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteObject(key); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
