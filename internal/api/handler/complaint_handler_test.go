package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

type stubComplaintService struct {
	createFn      func(ctx context.Context, ownerID string, in ports.CreateComplaintInput) (*domain.Complaint, error)
	setStatusFn   func(ctx context.Context, id, status string) (*domain.ComplaintWithOwner, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]*domain.Complaint, error)
	listAllFn     func(ctx context.Context) ([]*domain.ComplaintWithOwner, error)
}

func (s *stubComplaintService) Create(ctx context.Context, ownerID string, in ports.CreateComplaintInput) (*domain.Complaint, error) {
	return s.createFn(ctx, ownerID, in)
}

func (s *stubComplaintService) SetStatus(ctx context.Context, id, status string) (*domain.ComplaintWithOwner, error) {
	return s.setStatusFn(ctx, id, status)
}

func (s *stubComplaintService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
	return s.listByOwnerFn(ctx, ownerID)
}

func (s *stubComplaintService) ListAll(ctx context.Context) ([]*domain.ComplaintWithOwner, error) {
	return s.listAllFn(ctx)
}

type stubFileStore struct {
	saved   []string
	removed []string
}

func (s *stubFileStore) Save(fh *multipart.FileHeader, dir string) (string, error) {
	url := "/uploads/" + dir + "/" + fh.Filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *stubFileStore) Remove(url string) error {
	s.removed = append(s.removed, url)
	return nil
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte("content"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

var potholeFields = map[string]string{
	"category":    "Roads",
	"subcategory": "Pothole",
	"description": "Deep pothole on Main St",
}

func TestComplaintHandler_Create_WithAttachment(t *testing.T) {
	e := newTestEcho()
	files := &stubFileStore{}
	h := NewComplaintHandler(&stubComplaintService{
		createFn: func(_ context.Context, ownerID string, in ports.CreateComplaintInput) (*domain.Complaint, error) {
			if ownerID != "u1" || in.Category != "Roads" {
				t.Fatalf("unexpected create args %q %+v", ownerID, in)
			}
			return &domain.Complaint{ID: "c1", UserID: ownerID, Category: in.Category, FileURL: in.FileURL, Status: domain.StatusPending}, nil
		},
	}, files)

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "/complaints", potholeFields, "file", "photo.jpg"), rec)
	withPrincipal(c, "u1", domain.RoleUser)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["msg"] != "Complaint submitted successfully" {
		t.Fatalf("unexpected msg: %v", resp["msg"])
	}
	complaint := resp["complaint"].(map[string]any)
	if complaint["fileUrl"] != "/uploads/complaints/photo.jpg" || complaint["status"] != "pending" {
		t.Fatalf("unexpected complaint: %v", complaint)
	}
}

func TestComplaintHandler_Create_AdminForbidden(t *testing.T) {
	e := newTestEcho()
	files := &stubFileStore{}
	h := NewComplaintHandler(&stubComplaintService{}, files)

	c := e.NewContext(multipartRequest(t, "/complaints", potholeFields, "file", "photo.jpg"), httptest.NewRecorder())
	withPrincipal(c, "a1", domain.RoleAdmin)

	err := h.Create(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(files.saved) != 0 {
		t.Fatalf("attachment must not be stored on rejection, got %v", files.saved)
	}
}

func TestComplaintHandler_Create_FailedWriteRemovesAttachment(t *testing.T) {
	e := newTestEcho()
	files := &stubFileStore{}
	h := NewComplaintHandler(&stubComplaintService{
		createFn: func(context.Context, string, ports.CreateComplaintInput) (*domain.Complaint, error) {
			return nil, domain.ErrUserNotFound
		},
	}, files)

	c := e.NewContext(multipartRequest(t, "/complaints", potholeFields, "file", "photo.jpg"), httptest.NewRecorder())
	withPrincipal(c, "u1", domain.RoleUser)

	if err := h.Create(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != "/uploads/complaints/photo.jpg" {
		t.Fatalf("expected stored attachment to be removed, got %v", files.removed)
	}
}

func TestComplaintHandler_Create_FailedWriteWithoutAttachment(t *testing.T) {
	e := newTestEcho()
	files := &stubFileStore{}
	h := NewComplaintHandler(&stubComplaintService{
		createFn: func(context.Context, string, ports.CreateComplaintInput) (*domain.Complaint, error) {
			return nil, errors.New("insert failed")
		},
	}, files)

	c := e.NewContext(jsonRequest(http.MethodPost, "/complaints",
		`{"category":"Roads","subcategory":"Pothole","description":"Deep pothole"}`), httptest.NewRecorder())
	withPrincipal(c, "u1", domain.RoleUser)

	if err := h.Create(c); err == nil {
		t.Fatal("expected error")
	}
	if len(files.removed) != 0 {
		t.Fatalf("nothing to remove, got %v", files.removed)
	}
}

func TestComplaintHandler_Create_MissingFields(t *testing.T) {
	e := newTestEcho()
	files := &stubFileStore{}
	h := NewComplaintHandler(&stubComplaintService{}, files)

	c := e.NewContext(multipartRequest(t, "/complaints", map[string]string{"category": "Roads"}, "file", "photo.jpg"), httptest.NewRecorder())
	withPrincipal(c, "u1", domain.RoleUser)

	err := h.Create(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(files.saved) != 0 {
		t.Fatalf("attachment must not be stored on rejection, got %v", files.saved)
	}
}

func TestComplaintHandler_ListByOwner(t *testing.T) {
	svc := &stubComplaintService{
		listByOwnerFn: func(_ context.Context, ownerID string) ([]*domain.Complaint, error) {
			return nil, nil
		},
	}
	h := NewComplaintHandler(svc, &stubFileStore{})

	tests := []struct {
		name     string
		userID   string
		role     string
		wantErr  error
		wantCode int
	}{
		{"owner", "u1", domain.RoleUser, nil, http.StatusOK},
		{"admin", "a1", domain.RoleAdmin, nil, http.StatusOK},
		{"other user", "u2", domain.RoleUser, domain.ErrForbidden, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/complaints/user/u1", nil), rec)
			c.SetParamNames("userId")
			c.SetParamValues("u1")
			withPrincipal(c, tc.userID, tc.role)

			err := h.ListByOwner(c)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode || rec.Body.String() != "[]\n" {
				t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestComplaintHandler_UpdateStatus_PopulatesOwner(t *testing.T) {
	e := newTestEcho()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewComplaintHandler(&stubComplaintService{
		setStatusFn: func(_ context.Context, id, status string) (*domain.ComplaintWithOwner, error) {
			return &domain.ComplaintWithOwner{
				Complaint: domain.Complaint{ID: id, UserID: "u1", Status: status, UpdatedAt: now},
				Owner:     &domain.Owner{ID: "u1", FirstName: "Ana", Email: "ana@example.com"},
			}, nil
		},
	}, &stubFileStore{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/complaints/status/c1", `{"status":"resolved"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["status"] != "resolved" || resp["_id"] != "c1" {
		t.Fatalf("unexpected response: %v", resp)
	}
	owner, ok := resp["userId"].(map[string]any)
	if !ok || owner["email"] != "ana@example.com" {
		t.Fatalf("expected populated owner, got %v", resp["userId"])
	}
}

func TestComplaintHandler_UpdateStatus_NotFound(t *testing.T) {
	e := newTestEcho()
	h := NewComplaintHandler(&stubComplaintService{
		setStatusFn: func(context.Context, string, string) (*domain.ComplaintWithOwner, error) {
			return nil, domain.ErrComplaintNotFound
		},
	}, &stubFileStore{})

	c := e.NewContext(jsonRequest(http.MethodPatch, "/complaints/status/zzz", `{"status":"resolved"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("zzz")

	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrComplaintNotFound) {
		t.Fatalf("expected ErrComplaintNotFound, got %v", err)
	}
}

func TestComplaintHandler_ListAll_OwnerNull(t *testing.T) {
	e := newTestEcho()
	h := NewComplaintHandler(&stubComplaintService{
		listAllFn: func(context.Context) ([]*domain.ComplaintWithOwner, error) {
			return []*domain.ComplaintWithOwner{{Complaint: domain.Complaint{ID: "c1", UserID: "gone"}}}, nil
		},
	}, &stubFileStore{})

	rec := httptest.NewRecorder()
	if err := h.ListAll(e.NewContext(httptest.NewRequest(http.MethodGet, "/complaints/all", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"userId":null`)) {
		t.Fatalf("expected null owner, got %s", rec.Body.String())
	}
}
