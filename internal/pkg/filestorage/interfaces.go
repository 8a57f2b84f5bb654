package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under a subdirectory and returns its storage-relative path
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file by the storage-relative path SaveFileWithPath returned
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a storage-relative path
	GetFullPath(filePath string) string

	// URL returns the public URL of a storage-relative path
	URL(filePath string) string
}
