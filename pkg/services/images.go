package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const maxImageBytes = 5 * 1024 * 1024

// SavedImage describes a stored chat image. Paths are relative to the
// uploads root so records survive the root moving between runs.
type SavedImage struct {
	Path          string `json:"path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// ImageService persists chat images under <root>/ChatImages with
// thumbnails in a Thumbnails subdirectory.
type ImageService struct {
	root string
}

func NewImageService(root string) (*ImageService, error) {
	if err := os.MkdirAll(filepath.Join(root, "ChatImages", "Thumbnails"), 0755); err != nil {
		return nil, fmt.Errorf("creating image directories: %w", err)
	}
	return &ImageService{root: root}, nil
}

// Save writes the image bytes and a thumbnail, returning their relative
// paths and the byte size. Empty or oversized payloads are rejected.
func (s *ImageService) Save(data []byte) (*SavedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", len(data), maxImageBytes)
	}

	id := uuid.NewString()
	relPath := filepath.Join("ChatImages", id+".jpg")
	if err := os.WriteFile(filepath.Join(s.root, relPath), data, 0644); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}

	// TODO: downscale the thumbnail instead of storing a full copy
	relThumb := filepath.Join("ChatImages", "Thumbnails", id+"_thumb.jpg")
	if err := os.WriteFile(filepath.Join(s.root, relThumb), data, 0644); err != nil {
		// image saved, thumbnail missing; the UI falls back to the full image
		relThumb = ""
	}

	return &SavedImage{
		Path:          relPath,
		FileSizeBytes: int64(len(data)),
		ThumbnailPath: relThumb,
	}, nil
}

// ResolvePath returns the absolute location of a stored relative path.
// Absolute inputs pass through untouched.
func (s *ImageService) ResolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.root, rel)
}

// Delete removes a stored image. Missing files are a no-op.
func (s *ImageService) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full := s.ResolvePath(rel)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(full)
}
