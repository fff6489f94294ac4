package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/apperror"
)

var pdfMagic = []byte("%PDF-")

type StorageService interface {
	SaveFile(file *multipart.FileHeader, applicantID uuid.UUID) (filename, path string, err error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// SaveFile stores an uploaded CV as <applicant>_<uuid>.pdf. Only PDFs within
// the size limit are accepted.
func (s *storageService) SaveFile(file *multipart.FileHeader, applicantID uuid.UUID) (string, string, error) {
	const op = "save upload"

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", "", apperror.Validation(op, "only PDF files are accepted", fmt.Sprintf("got extension %q", ext))
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", "", apperror.Validation(op, "file is too large",
			fmt.Sprintf("%d bytes exceeds the %d byte limit", file.Size, s.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(src, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return "", "", apperror.Validation(op, "file content is not a PDF")
	}

	uniqueFilename := fmt.Sprintf("%s_%s%s", applicantID, uuid.New(), ext)
	filePath := s.GetFilePath(uniqueFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	if err := os.Remove(s.GetFilePath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
