package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
)

// DiskStore écrit les uploads dans un dossier local, sous un nom aléatoire.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

var _ ports.FileStore = (*DiskStore)(nil)

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, originalName, mimeType string, content io.Reader) (domain.UploadedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.UploadedFile{}, fmt.Errorf("storage: create upload dir: %w", err)
	}

	filename := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("storage: create file: %w", err)
	}

	_, err = io.Copy(dst, content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Pas de fichier partiel
		_ = os.Remove(path)
		return domain.UploadedFile{}, fmt.Errorf("storage: write file: %w", err)
	}

	return domain.UploadedFile{
		Destination: s.dir,
		Filename:    filename,
		MimeType:    mimeType,
	}, nil
}

func (s *DiskStore) Remove(_ context.Context, file domain.UploadedFile) error {
	if err := os.Remove(file.StoragePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}
