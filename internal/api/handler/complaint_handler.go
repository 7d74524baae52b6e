package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/api/metrics"
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

// FileStore persists uploaded attachments and returns their public URL.
// Remove discards a file whose record was never written.
type FileStore interface {
	Save(fh *multipart.FileHeader, dir string) (string, error)
	Remove(url string) error
}

const complaintUploadDir = "complaints"

// ComplaintHandler handles HTTP requests for complaint operations.
type ComplaintHandler struct {
	service ports.ComplaintService
	files   FileStore
}

func NewComplaintHandler(service ports.ComplaintService, files FileStore) *ComplaintHandler {
	return &ComplaintHandler{service: service, files: files}
}

type createComplaintRequest struct {
	Category    string `json:"category"    form:"category"`
	Subcategory string `json:"subcategory" form:"subcategory"`
	Description string `json:"description" form:"description" validate:"max=5000"`
}

// Create files a new complaint for the current citizen.
//
// @Summary      File a complaint
// @Tags         complaints
// @Accept       multipart/form-data
// @Produce      json
// @Param        category     formData  string  true   "Category"
// @Param        subcategory  formData  string  true   "Subcategory"
// @Param        description  formData  string  true   "Description"
// @Param        file         formData  file    false  "Attachment"
// @Success      201  {object}  complaintCreatedResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /complaints [post]
func (h *ComplaintHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var req createComplaintRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Reject before touching the disk; the service re-checks both rules
	// against the stored identity.
	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Subcategory) == "" || strings.TrimSpace(req.Description) == "" {
		return domain.Invalid("All fields are required")
	}
	if p.Role != domain.RoleUser {
		return &domain.ForbiddenError{Reason: "Only users can file complaints"}
	}

	fileURL, err := h.saveAttachment(c)
	if err != nil {
		return err
	}

	complaint, err := h.service.Create(c.Request().Context(), p.UserID, ports.CreateComplaintInput{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Description: req.Description,
		FileURL:     fileURL,
	})
	if err != nil {
		discardUpload(h.files, fileURL)
		return err
	}

	metrics.ComplaintsCreatedTotal.WithLabelValues(complaint.Category).Inc()
	return c.JSON(http.StatusCreated, complaintCreatedResponse{Msg: "Complaint submitted successfully", Complaint: complaint})
}

func (h *ComplaintHandler) saveAttachment(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid attachment").SetInternal(err)
	}
	return h.files.Save(fh, complaintUploadDir)
}

// discardUpload removes a stored file after the write that would have
// referenced it failed. The write's error is what the caller reports.
func discardUpload(files FileStore, url string) {
	if url != "" {
		_ = files.Remove(url)
	}
}

// ListByOwner returns a citizen's complaints, newest first. Citizens may
// only list their own; administrators may list anyone's.
//
// @Summary      List a user's complaints
// @Tags         complaints
// @Produce      json
// @Param        userId  path  string  true  "Owner id"
// @Success      200  {array}   domain.Complaint
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /complaints/user/{userId} [get]
func (h *ComplaintHandler) ListByOwner(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	ownerID := c.Param("userId")
	if ownerID != p.UserID && !p.IsAdmin() {
		return domain.ErrForbidden
	}

	complaints, err := h.service.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	if complaints == nil {
		complaints = []*domain.Complaint{}
	}
	return c.JSON(http.StatusOK, complaints)
}

// ListAll returns every complaint with its owner populated.
//
// @Summary      List all complaints
// @Tags         complaints
// @Produce      json
// @Success      200  {array}   populatedComplaint
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /complaints/all [get]
func (h *ComplaintHandler) ListAll(c echo.Context) error {
	complaints, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPopulatedList(complaints))
}

// UpdateStatus sets a complaint's status and notifies the owner.
//
// @Summary      Update complaint status
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Param        id    path  string         true  "Complaint id"
// @Param        body  body  statusRequest  true  "New status"
// @Success      200  {object}  populatedComplaint
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /complaints/status/{id} [patch]
func (h *ComplaintHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	metrics.ComplaintStatusChangesTotal.WithLabelValues(updated.Status).Inc()
	return c.JSON(http.StatusOK, toPopulated(updated))
}
