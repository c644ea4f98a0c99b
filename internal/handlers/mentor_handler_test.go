package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubMentorService struct {
	listResult      []models.Mentor
	listTotal       int
	mentor          *models.Mentor
	err             error
	deleteCalls     int
	lastFilter      repository.MentorListFilter
	lastCreate      services.CreateMentorInput
	lastUpdate      repository.UpdateMentorInput
	lastProfile     services.MentorProfileInput
	lastActor       services.Actor
	uploadedName    string
	uploadedContent []byte
}

func (s *stubMentorService) ListMentors(_ context.Context, filter repository.MentorListFilter) ([]models.Mentor, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.err
}

func (s *stubMentorService) GetMentor(_ context.Context, _ int64) (*models.Mentor, error) {
	return s.mentor, s.err
}

func (s *stubMentorService) CreateMentor(_ context.Context, input services.CreateMentorInput) (*models.Mentor, error) {
	s.lastCreate = input
	return s.mentor, s.err
}

func (s *stubMentorService) UpdateMentor(_ context.Context, _ int64, input repository.UpdateMentorInput) (*models.Mentor, error) {
	s.lastUpdate = input
	return s.mentor, s.err
}

func (s *stubMentorService) DeleteMentor(_ context.Context, _ int64) error {
	s.deleteCalls++
	return s.err
}

func (s *stubMentorService) GetProfile(_ context.Context, actor services.Actor) (*models.Mentor, error) {
	s.lastActor = actor
	return s.mentor, s.err
}

func (s *stubMentorService) UpdateProfile(_ context.Context, actor services.Actor, input services.MentorProfileInput) (*models.Mentor, error) {
	s.lastActor = actor
	s.lastProfile = input
	return s.mentor, s.err
}

func (s *stubMentorService) UploadAvatar(_ context.Context, actor services.Actor, file multipart.File, filename string, _ int64) (*models.Mentor, error) {
	s.lastActor = actor
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	s.uploadedName = filename
	s.uploadedContent = content
	return s.mentor, s.err
}

func newAdminApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", models.RoleAdmin)
		c.Locals("user_id", "1")
		return c.Next()
	})
	return app
}

func newMentorApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", models.RoleMentor)
		c.Locals("user_id", "7")
		return c.Next()
	})
	return app
}

func TestListMentorsPassesFiltersAndPagination(t *testing.T) {
	service := &stubMentorService{
		listResult: []models.Mentor{{ID: 1, Name: "Priya Sharma"}},
		listTotal:  21,
	}
	handler := NewMentorHandler(service)

	app := newAdminApp()
	app.Get("/api/v1/admin/mentors", handler.ListMentors)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/admin/mentors?search=priya&status=active&page=3&limit=10", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.Search != "priya" || service.lastFilter.Status != "active" {
		t.Fatalf("unexpected filter %+v", service.lastFilter)
	}
	if service.lastFilter.Offset != 20 || service.lastFilter.Limit != 10 {
		t.Fatalf("expected offset 20 limit 10, got %+v", service.lastFilter)
	}

	var body struct {
		Mentors    []models.Mentor       `json:"mentors"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Pagination.TotalPages != 3 || len(body.Mentors) != 1 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestCreateMentorReturnsConflictForDuplicateEmail(t *testing.T) {
	service := &stubMentorService{err: services.ErrConflict}
	handler := NewMentorHandler(service)

	app := newAdminApp()
	app.Post("/api/v1/admin/mentors", handler.CreateMentor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/mentors", strings.NewReader(`{
		"name": "Rahul Verma",
		"email": "rahul.verma@example.com",
		"specialization": "Web Development",
		"hourly_rate": 3500
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastCreate.HourlyRate != 3500 || service.lastCreate.Specialization != "Web Development" {
		t.Fatalf("unexpected create input %+v", service.lastCreate)
	}
}

func TestDeleteMentorRequiresConfirmation(t *testing.T) {
	service := &stubMentorService{}
	handler := NewMentorHandler(service)

	app := newAdminApp()
	app.Delete("/api/v1/admin/mentors/:id", handler.DeleteMentor)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/mentors/4", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d", resp.StatusCode)
	}
	if service.deleteCalls != 0 {
		t.Fatalf("expected no delete without confirmation")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/mentors/4?confirm=true", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent || service.deleteCalls != 1 {
		t.Fatalf("expected 204 and one delete, got %d and %d", resp.StatusCode, service.deleteCalls)
	}
}

func TestDeleteMentorWithDependentsReturnsConflict(t *testing.T) {
	handler := NewMentorHandler(&stubMentorService{err: services.ErrMentorHasDependents})

	app := newAdminApp()
	app.Delete("/api/v1/admin/mentors/:id", handler.DeleteMentor)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/mentors/4?confirm=true", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUpdateProfileForwardsActor(t *testing.T) {
	service := &stubMentorService{mentor: &models.Mentor{ID: 3, Name: "Priya S."}}
	handler := NewMentorHandler(service)

	app := newMentorApp()
	app.Put("/api/v1/mentor/profile", handler.UpdateProfile)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/mentor/profile", strings.NewReader(`{"name":"Priya S.","phone":"+91 98765 43210"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActor.UserID != 7 || service.lastActor.Role != models.RoleMentor {
		t.Fatalf("unexpected actor %+v", service.lastActor)
	}
	if service.lastProfile.Phone == nil || *service.lastProfile.Phone != "+91 98765 43210" {
		t.Fatalf("expected phone to be forwarded, got %+v", service.lastProfile)
	}
}

func TestUploadAvatarForwardsFile(t *testing.T) {
	avatarURL := "https://storage.example/avatars/3.png"
	service := &stubMentorService{mentor: &models.Mentor{ID: 3, AvatarURL: &avatarURL}}
	handler := NewMentorHandler(service)

	app := newMentorApp()
	app.Post("/api/v1/mentor/profile/avatar", handler.UploadAvatar)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	part, err := writer.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mentor/profile/avatar", &requestBody)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.uploadedName != "avatar.png" || string(service.uploadedContent) != "png-bytes" {
		t.Fatalf("unexpected upload %q %q", service.uploadedName, service.uploadedContent)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["avatar_url"] != avatarURL {
		t.Fatalf("expected avatar_url %q, got %#v", avatarURL, payload["avatar_url"])
	}
}

func TestUploadAvatarWithoutStorageReturnsUnavailable(t *testing.T) {
	handler := NewMentorHandler(&stubMentorService{err: services.ErrStorageNotConfigured})

	app := newMentorApp()
	app.Post("/api/v1/mentor/profile/avatar", handler.UploadAvatar)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	part, _ := writer.CreateFormFile("avatar", "avatar.png")
	_, _ = part.Write([]byte("png-bytes"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mentor/profile/avatar", &requestBody)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
