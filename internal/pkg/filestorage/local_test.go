package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// fileHeader builds a real multipart.FileHeader carrying content, the
// same shape gin hands to the upload handler.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdfFile", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parsing multipart form: %v", err)
	}

	headers := req.MultipartForm.File["pdfFile"]
	if len(headers) != 1 {
		t.Fatalf("expected one file header, got %d", len(headers))
	}
	return headers[0]
}

func newStorage(t *testing.T) *LocalStorage {
	t.Helper()
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	return storage
}

func TestSaveAndExists(t *testing.T) {
	storage := newStorage(t)

	content := []byte("%PDF-1.4 test content")
	if err := storage.Save(fileHeader(t, "doc.pdf", content), "stored.pdf"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !storage.Exists("stored.pdf") {
		t.Fatal("expected stored file to exist")
	}

	saved, err := os.ReadFile(storage.FullPath("stored.pdf"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Error("stored content does not match the upload")
	}
}

func TestSaveRejectsUnsafeNames(t *testing.T) {
	storage := newStorage(t)
	header := fileHeader(t, "doc.pdf", []byte("x"))

	for _, name := range []string{"", ".", "..", "../escape.pdf", "a/b.pdf"} {
		if err := storage.Save(header, name); err == nil {
			t.Errorf("expected Save(%q) to fail", name)
		}
	}
}

func TestRename(t *testing.T) {
	storage := newStorage(t)
	if err := storage.Save(fileHeader(t, "doc.pdf", []byte("x")), "old.pdf"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := storage.Rename("old.pdf", "new.pdf"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if storage.Exists("old.pdf") {
		t.Error("old name still present after rename")
	}
	if !storage.Exists("new.pdf") {
		t.Error("new name missing after rename")
	}
}

func TestRenameMissingSource(t *testing.T) {
	storage := newStorage(t)

	err := storage.Rename("ghost.pdf", "new.pdf")
	if !errors.Is(err, ErrNotExists) {
		t.Fatalf("expected ErrNotExists, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	storage := newStorage(t)
	if err := storage.Save(fileHeader(t, "doc.pdf", []byte("x")), "doc.pdf"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := storage.Delete("doc.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if storage.Exists("doc.pdf") {
		t.Fatal("file still present after delete")
	}

	// A second delete of the same name must not fail.
	if err := storage.Delete("doc.pdf"); err != nil {
		t.Fatalf("Delete of missing file: %v", err)
	}
}

func TestFullPathUnsafeName(t *testing.T) {
	storage := newStorage(t)
	if got := storage.FullPath("../outside.pdf"); got != "" {
		t.Errorf("expected empty path for unsafe name, got %q", got)
	}
}

func TestNewLocalStorageCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewLocalStorage(base); err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Fatalf("expected base directory to exist: %v", err)
	}
}
