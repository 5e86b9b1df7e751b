// Package storage uploads user images to an object store and returns the
// public URL to persist on the owning row.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"chelagram/internal/config"
	"chelagram/internal/middleware"
	"chelagram/internal/models"
)

// Storage persists uploaded image bytes and returns a publicly reachable URL.
type Storage interface {
	Upload(ctx context.Context, folder, filename, contentType string, content []byte) (string, error)
}

const (
	maxUploadSizeBytes = 10 * 1024 * 1024
	uploadTimeout      = 30 * time.Second
)

// New selects the bucket-backed store when STORAGE_URL is configured and the
// local-directory store otherwise.
func New(cfg *config.Config) Storage {
	if cfg.StorageURL != "" {
		return &bucketStorage{
			baseURL: strings.TrimRight(cfg.StorageURL, "/"),
			bucket:  cfg.StorageBucket,
			apiKey:  cfg.StorageAPIKey,
			client:  &http.Client{Timeout: uploadTimeout},
		}
	}
	return &localStorage{dir: cfg.StorageLocalDir}
}

// ObjectName builds a collision-resistant object name preserving the original
// file extension, e.g. "1719237123456-837.jpg".
func ObjectName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1000), ext)
}

// ValidateImage rejects non-image payloads and oversized uploads before they
// reach the store. Returns the sniffed content type.
func ValidateImage(content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if len(content) > maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxUploadSizeBytes/(1024*1024)))
	}
	detected := http.DetectContentType(content)
	switch detected {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return detected, nil
	}
	return "", models.NewValidationError("Invalid image type")
}

// bucketStorage talks to a Supabase-style storage API:
// upload via POST /storage/v1/object/{bucket}/{path}, public URL at
// /storage/v1/object/public/{bucket}/{path}.
type bucketStorage struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client
}

func (s *bucketStorage) Upload(ctx context.Context, folder, filename, contentType string, content []byte) (string, error) {
	objectPath := path.Join(s.bucket, folder, filename)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(content))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		middleware.StorageUploads.WithLabelValues("bucket", "error").Inc()
		return "", models.NewInternalError(fmt.Errorf("storage upload: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		middleware.StorageUploads.WithLabelValues("bucket", "error").Inc()
		return "", models.NewInternalError(
			fmt.Errorf("storage upload failed: status %d: %s", resp.StatusCode, string(body)))
	}

	middleware.StorageUploads.WithLabelValues("bucket", "ok").Inc()
	return fmt.Sprintf("%s/storage/v1/object/public/%s", s.baseURL, objectPath), nil
}

// localStorage writes uploads under a directory served at /uploads.
// Development fallback when no bucket is configured.
type localStorage struct {
	dir string
}

func (s *localStorage) Upload(_ context.Context, folder, filename, _ string, content []byte) (string, error) {
	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		middleware.StorageUploads.WithLabelValues("local", "error").Inc()
		return "", models.NewInternalError(err)
	}
	dest := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		middleware.StorageUploads.WithLabelValues("local", "error").Inc()
		return "", models.NewInternalError(err)
	}
	middleware.StorageUploads.WithLabelValues("local", "ok").Inc()
	return "/uploads/" + url.PathEscape(folder) + "/" + url.PathEscape(filepath.Base(filename)), nil
}
