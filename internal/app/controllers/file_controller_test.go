package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/middleware"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
)

// fakeAttachmentService scripts the service responses so the handler's
// status and body mapping can be asserted without a database.
type fakeAttachmentService struct {
	uploadErr   error
	renameName  string
	renameErr   error
	deleteErr   error
	listResp    *dto.FileListResponse
	listErr     error
	dataResp    *dto.UploadDataResponse
	dataErr     error
	resolvePath string
	resolveErr  error
}

func (f *fakeAttachmentService) Upload(_ context.Context, ownerID int64, file *multipart.FileHeader, subjectName, period string) (*models.Attachment, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.Attachment{ID: 1, Name: "stored.pdf", TeacherID: ownerID, CourseID: 1, UploadedAt: time.Now()}, nil
}

func (f *fakeAttachmentService) Rename(context.Context, int64, string, string) (string, error) {
	return f.renameName, f.renameErr
}

func (f *fakeAttachmentService) Delete(context.Context, int64, string) error {
	return f.deleteErr
}

func (f *fakeAttachmentService) List(context.Context, int64, string) (*dto.FileListResponse, error) {
	return f.listResp, f.listErr
}

func (f *fakeAttachmentService) UploadData(context.Context) (*dto.UploadDataResponse, error) {
	return f.dataResp, f.dataErr
}

func (f *fakeAttachmentService) Resolve(context.Context, int64, string) (string, error) {
	return f.resolvePath, f.resolveErr
}

// newFileRouter wires the controller behind a stub auth middleware that
// injects the teacher identity directly.
func newFileRouter(service *fakeAttachmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	controller := NewFileController(service, zerolog.Nop())

	files := router.Group("/files")
	files.Use(func(c *gin.Context) {
		c.Set(middleware.ContextTeacherID, int64(1))
		c.Next()
	})
	{
		files.POST("/upload_pdf", controller.Upload)
		files.GET("/view/:name", controller.View)
		files.GET("/downloads/:name", controller.Download)
		files.DELETE("/delete/:name", controller.Delete)
		files.PUT("/rename", controller.Rename)
		files.GET("/list_files", controller.List)
		files.GET("/data_for_upload", controller.UploadData)
	}
	return router
}

func multipartUpload(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("pdfFile", filename)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("writing field %s: %v", key, err)
		}
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestUploadEndpointSuccess(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{})

	body, contentType := multipartUpload(t, map[string]string{"materia_name": "Algebra", "periodo": "2024A"}, "unit1.pdf")
	req := httptest.NewRequest(http.MethodPost, "/files/upload_pdf", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "uploaded") {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
}

func TestUploadEndpointMissingFile(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{})

	body, contentType := multipartUpload(t, map[string]string{"materia_name": "Algebra", "periodo": "2024A"}, "")
	req := httptest.NewRequest(http.MethodPost, "/files/upload_pdf", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestUploadEndpointConflict(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{
		uploadErr: apperrors.NewCustomError(apperrors.ErrFileAlreadyExists, "the file already exists"),
	})

	body, contentType := multipartUpload(t, map[string]string{"materia_name": "Algebra", "periodo": "2024A"}, "unit1.pdf")
	req := httptest.NewRequest(http.MethodPost, "/files/upload_pdf", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "already exists") {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
}

func TestDeleteEndpointNotFound(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{deleteErr: apperrors.ErrAttachmentNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/files/delete/ghost.pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestDeleteEndpointSuccess(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{})

	req := httptest.NewRequest(http.MethodDelete, "/files/delete/doc.pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "doc.pdf") {
		t.Errorf("body should echo the deleted name: %s", resp.Body.String())
	}
}

func TestRenameEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		service    *fakeAttachmentService
		body       string
		wantStatus int
	}{
		{"success", &fakeAttachmentService{renameName: "new.pdf"}, `{"old_name":"old.pdf","new_name":"new"}`, http.StatusOK},
		{"missing fields", &fakeAttachmentService{}, `{"old_name":"old.pdf"}`, http.StatusBadRequest},
		{"not owned", &fakeAttachmentService{renameErr: apperrors.ErrAttachmentNotFound}, `{"old_name":"old.pdf","new_name":"new"}`, http.StatusNotFound},
		{"name taken", &fakeAttachmentService{renameErr: apperrors.ErrFileAlreadyExists}, `{"old_name":"old.pdf","new_name":"new"}`, http.StatusBadRequest},
		{"storage failure", &fakeAttachmentService{renameErr: apperrors.ErrStorageInconsistent}, `{"old_name":"old.pdf","new_name":"new"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newFileRouter(tt.service)

			req := httptest.NewRequest(http.MethodPut, "/files/rename", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", resp.Code, tt.wantStatus, resp.Body.String())
			}
		})
	}
}

func TestListEndpoint(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{
		listResp: &dto.FileListResponse{Files: []dto.FileEntry{
			{ID: 1, Name: "a.pdf", Course: "Algebra (2024A)", Date: "01/02/2024 10:30"},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/files/list_files", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var payload dto.FileListResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(payload.Files) != 1 || payload.Files[0].Course != "Algebra (2024A)" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestUploadDataEndpointUsesSpanishKeys(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{
		dataResp: &dto.UploadDataResponse{Subjects: []string{"Algebra"}, Periods: []string{"2024A"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/files/data_for_upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	body := resp.Body.String()
	if !strings.Contains(body, `"materias"`) || !strings.Contains(body, `"periodos"`) {
		t.Errorf("expected Spanish JSON keys, got %s", body)
	}
}

func TestViewEndpointServesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 content"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	router := newFileRouter(&fakeAttachmentService{resolvePath: path})

	req := httptest.NewRequest(http.MethodGet, "/files/view/doc.pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestDownloadEndpointNotFound(t *testing.T) {
	router := newFileRouter(&fakeAttachmentService{resolveErr: apperrors.ErrAttachmentNotFound})

	req := httptest.NewRequest(http.MethodGet, "/files/downloads/ghost.pdf", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}
