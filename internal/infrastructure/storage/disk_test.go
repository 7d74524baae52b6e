package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileHeader builds a multipart.FileHeader the way net/http parses one.
func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(content))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestDisk_Save(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)
	d.newID = func() string { return "fixed" }

	url, err := d.Save(fileHeader(t, "photo.PNG", "png-bytes"), "complaints")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if url != "/uploads/complaints/fixed.png" {
		t.Fatalf("unexpected url %q", url)
	}

	got, err := os.ReadFile(filepath.Join(root, "complaints", "fixed.png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != "png-bytes" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestDisk_Save_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)

	url, err := d.Save(fileHeader(t, "../../evil.sh", "x"), "../outside")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/outside/") {
		t.Fatalf("expected path clamped under root, got %q", url)
	}
	if _, err := os.Stat(filepath.Join(root, "outside")); err != nil {
		t.Fatalf("expected directory inside root: %v", err)
	}
}

func TestSafeExt(t *testing.T) {
	tests := map[string]string{
		"report.pdf":     ".pdf",
		"IMG.JPEG":       ".jpeg",
		"noext":          "",
		"weird.p$p":      "",
		"archive.tar.gz": ".gz",
		"x.verylongext1": "",
	}
	for in, want := range tests {
		if got := safeExt(in); got != want {
			t.Errorf("safeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisk_Remove(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root)
	d.newID = func() string { return "gone" }

	url, err := d.Save(fileHeader(t, "photo.png", "png-bytes"), "complaints")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := d.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "complaints", "gone.png")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}

	// Already gone and foreign URLs are no-ops.
	for _, u := range []string{url, "/elsewhere/file.png", "", "/uploads/../../etc/passwd"} {
		if err := d.Remove(u); err != nil {
			t.Fatalf("Remove(%q): %v", u, err)
		}
	}
}
