package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const storageObjectRoot = "/storage/v1/object/"

// StorageService persists mentor avatars in an object store.
type StorageService interface {
	UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// SupabaseStorageService talks to the Supabase Storage REST API with a service key.
type SupabaseStorageService struct {
	projectURL string
	bucket     string
	key        string
	client     *http.Client
}

func NewSupabaseStorageService(projectURL, bucket, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		projectURL: strings.TrimRight(projectURL, "/"),
		bucket:     bucket,
		key:        serviceKey,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *SupabaseStorageService) UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error) {
	key := path.Join(strings.Trim(folder, "/"), filename)

	// Read one byte past the cap to detect oversized files.
	payload, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar %s: %w", filename, err)
	}
	if len(payload) > maxAvatarBytes {
		return "", fmt.Errorf("avatar %s exceeds %d bytes: %w", filename, maxAvatarBytes, ErrInvalidInput)
	}

	if _, err := s.send(ctx, http.MethodPost, s.objectURL(false, key), bytes.NewReader(payload), map[string]string{
		"Content-Type": avatarContentType(filename, payload),
		"x-upsert":     "true",
	}); err != nil {
		return "", err
	}
	return s.objectURL(true, key), nil
}

// DeleteFile removes the object behind fileURL. A missing object is not an error.
func (s *SupabaseStorageService) DeleteFile(ctx context.Context, fileURL string) error {
	key, ok := s.objectKey(fileURL)
	if !ok {
		return fmt.Errorf("delete %q: url is outside bucket %s", fileURL, s.bucket)
	}

	status, err := s.send(ctx, http.MethodDelete, s.objectURL(false, key), nil, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

// OwnsURL reports whether fileURL points into the configured bucket.
func (s *SupabaseStorageService) OwnsURL(fileURL string) bool {
	_, ok := s.objectKey(fileURL)
	return ok
}

func (s *SupabaseStorageService) objectURL(public bool, key string) string {
	scope := s.bucket
	if public {
		scope = "public/" + s.bucket
	}
	return s.projectURL + storageObjectRoot + scope + "/" + key
}

// objectKey accepts both the public and the authenticated form of an object URL.
func (s *SupabaseStorageService) objectKey(fileURL string) (string, bool) {
	parsed, err := url.Parse(fileURL)
	if err != nil || !strings.HasPrefix(parsed.Path, storageObjectRoot) {
		return "", false
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(parsed.Path, storageObjectRoot), "public/")
	key, found := strings.CutPrefix(rest, s.bucket+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

// send performs an authenticated request and returns the response status.
// Non-2xx responses are reported as errors carrying a prefix of the body.
func (s *SupabaseStorageService) send(ctx context.Context, method, target string, body io.Reader, headers map[string]string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, fmt.Errorf("storage %s: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("storage %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		return resp.StatusCode, nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return resp.StatusCode, fmt.Errorf("storage %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(detail)))
}

func avatarContentType(filename string, payload []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(payload)
}

// DisabledStorage is used when no storage backend is configured.
type DisabledStorage struct{}

func (DisabledStorage) UploadFile(context.Context, multipart.File, string, string) (string, error) {
	return "", ErrStorageNotConfigured
}

func (DisabledStorage) DeleteFile(context.Context, string) error {
	return ErrStorageNotConfigured
}
