package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func TestSupabaseStorageUploadAndDelete(t *testing.T) {
	var uploadedPath, uploadedBody, deletedPath, authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		switch r.Method {
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			uploadedPath = r.URL.Path
			uploadedBody = string(body)
		case http.MethodDelete:
			deletedPath = r.URL.Path
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	storage := NewSupabaseStorageService(server.URL+"/", "avatars", "service-key")
	ctx := context.Background()

	fileURL, err := storage.UploadFile(ctx, memoryFile{bytes.NewReader([]byte("png-bytes"))}, "mentor-1.png", "/mentors/")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if uploadedPath != "/storage/v1/object/avatars/mentors/mentor-1.png" || uploadedBody != "png-bytes" {
		t.Fatalf("unexpected upload %s %q", uploadedPath, uploadedBody)
	}
	if authHeader != "Bearer service-key" {
		t.Fatalf("expected service key authorization, got %q", authHeader)
	}
	if want := server.URL + "/storage/v1/object/public/avatars/mentors/mentor-1.png"; fileURL != want {
		t.Fatalf("expected public url %s, got %s", want, fileURL)
	}
	if !storage.OwnsURL(fileURL) {
		t.Fatalf("expected storage to own its public url")
	}

	if err := storage.DeleteFile(ctx, fileURL); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if deletedPath != "/storage/v1/object/avatars/mentors/mentor-1.png" {
		t.Fatalf("unexpected delete path %s", deletedPath)
	}
}

func TestSupabaseStorageReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, "bucket not found", http.StatusBadRequest)
	}))
	defer server.Close()

	storage := NewSupabaseStorageService(server.URL, "avatars", "service-key")
	ctx := context.Background()

	if _, err := storage.UploadFile(ctx, memoryFile{bytes.NewReader([]byte("x"))}, "a.png", "mentors"); err == nil {
		t.Fatalf("expected upload error on 400")
	}
	if err := storage.DeleteFile(ctx, server.URL+"/storage/v1/object/public/avatars/mentors/a.png"); err != nil {
		t.Fatalf("expected missing object delete to succeed, got %v", err)
	}
	if err := storage.DeleteFile(ctx, "https://cdn.example.com/other/a.png"); err == nil {
		t.Fatalf("expected foreign url to be rejected")
	}
	if storage.OwnsURL("https://cdn.example.com/other/a.png") {
		t.Fatalf("expected foreign url not to be owned")
	}
}

func TestDisabledStorage(t *testing.T) {
	var storage StorageService = DisabledStorage{}
	if _, err := storage.UploadFile(context.Background(), nil, "a.png", "mentors"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
}
