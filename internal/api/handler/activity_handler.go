package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

const activityUploadDir = "dailyActivities"

// ActivityHandler serves the admin daily-activity board and its public feed.
type ActivityHandler struct {
	service ports.ActivityService
	files   FileStore
}

func NewActivityHandler(service ports.ActivityService, files FileStore) *ActivityHandler {
	return &ActivityHandler{service: service, files: files}
}

type activityForm struct {
	Date        string `form:"date"        json:"date"`
	Department  string `form:"department"  json:"department"  validate:"max=120"`
	Title       string `form:"title"       json:"title"       validate:"max=200"`
	Description string `form:"description" json:"description" validate:"max=5000"`
}

// Create posts a new daily activity.
//
// @Summary      Create a daily activity
// @Tags         daily-updates
// @Accept       multipart/form-data
// @Produce      json
// @Param        date         formData  string  false  "Date (YYYY-MM-DD or RFC 3339)"
// @Param        department   formData  string  true   "Department"
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        image        formData  file    false  "Image"
// @Success      201  {object}  activityResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/daily-updates [post]
func (h *ActivityHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	var form activityForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if strings.TrimSpace(form.Department) == "" || strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" {
		return domain.Invalid("Department, title and description are required")
	}

	date, err := parseActivityDate(form.Date)
	if err != nil {
		return err
	}
	image, err := h.saveImage(c)
	if err != nil {
		return err
	}

	activity, err := h.service.Create(c.Request().Context(), ports.ActivityInput{
		Date:        date,
		Department:  form.Department,
		Title:       form.Title,
		Description: form.Description,
		Image:       image,
		CreatedBy:   p.UserID,
	})
	if err != nil {
		discardUpload(h.files, image)
		return err
	}
	return c.JSON(http.StatusCreated, activityResponse{Message: "Daily activity created successfully", Activity: activity})
}

// List returns one page of activities for the admin board.
//
// @Summary      List daily activities (paginated)
// @Tags         daily-updates
// @Produce      json
// @Param        page  query  int  false  "Page number, starting at 1"
// @Success      200  {object}  activityPageResponse
// @Router       /admin/daily-updates [get]
func (h *ActivityHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	res, err := h.service.ListPage(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activityPageResponse{
		Activities:  res.Activities,
		CurrentPage: res.CurrentPage,
		TotalPages:  res.TotalPages,
	})
}

// Update edits an activity. Omitted fields keep their value.
//
// @Summary      Update a daily activity
// @Tags         daily-updates
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path  string  true  "Activity id"
// @Success      200  {object}  activityUpdatedResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/daily-updates/{id} [put]
func (h *ActivityHandler) Update(c echo.Context) error {
	var form activityForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	var patch ports.ActivityPatch
	if form.Date != "" {
		date, err := parseActivityDate(form.Date)
		if err != nil {
			return err
		}
		patch.Date = &date
	}
	if form.Department != "" {
		patch.Department = &form.Department
	}
	if form.Title != "" {
		patch.Title = &form.Title
	}
	if form.Description != "" {
		patch.Description = &form.Description
	}

	image, err := h.saveImage(c)
	if err != nil {
		return err
	}
	if image != "" {
		patch.Image = &image
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		discardUpload(h.files, image)
		return err
	}
	return c.JSON(http.StatusOK, activityUpdatedResponse{Message: "Activity updated successfully", UpdatedActivity: updated})
}

// Delete removes an activity.
//
// @Summary      Delete a daily activity
// @Tags         daily-updates
// @Produce      json
// @Param        id   path  string  true  "Activity id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/daily-updates/{id} [delete]
func (h *ActivityHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Activity deleted successfully"})
}

// Public returns every activity, newest first.
//
// @Summary      Public daily activity feed
// @Tags         daily-updates
// @Produce      json
// @Success      200  {array}  domain.DailyActivity
// @Router       /daily-updates [get]
func (h *ActivityHandler) Public(c echo.Context) error {
	items, err := h.service.ListPublic(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ActivityHandler) saveImage(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid image").SetInternal(err)
	}
	return h.files.Save(fh, activityUploadDir)
}

// parseActivityDate accepts a calendar date or an RFC 3339 timestamp. An
// empty value yields the zero time, which the service replaces with now.
func parseActivityDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, domain.Invalid("date must be YYYY-MM-DD or an RFC 3339 timestamp")
}
