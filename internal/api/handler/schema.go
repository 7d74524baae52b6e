package handler

import (
	"time"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Msg string `json:"msg"`
}

type msgResponse struct {
	Msg string `json:"msg"`
}

// --- Auth ---

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"    validate:"omitempty,email"`
	Phone     string `json:"phone"    validate:"omitempty,max=32"`
	Address   string `json:"address"  validate:"omitempty,max=512"`
	Password  string `json:"password" validate:"omitempty,max=72"`
}

type createAdminRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"    validate:"omitempty,email"`
	Phone     string `json:"phone"    validate:"omitempty,max=32"`
	Password  string `json:"password" validate:"omitempty,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userSummary is the identity echoed back on login.
type userSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type loginResponse struct {
	Msg  string      `json:"msg"`
	User userSummary `json:"user"`
}

type meResponse struct {
	User *domain.User `json:"user"`
}

type adminView struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type createAdminResponse struct {
	Msg   string    `json:"msg"`
	Admin adminView `json:"admin"`
}

// --- Complaints ---

type statusRequest struct {
	Status string `json:"status" validate:"omitempty,max=40"`
}

type complaintCreatedResponse struct {
	Msg       string            `json:"msg"`
	Complaint *domain.Complaint `json:"complaint"`
}

// populatedComplaint renders a complaint with its userId replaced by the
// owner's public fields, or null when the owner no longer exists.
type populatedComplaint struct {
	ID          string        `json:"_id"`
	UserID      *domain.Owner `json:"userId"`
	Category    string        `json:"category"`
	Subcategory string        `json:"subcategory"`
	Description string        `json:"description"`
	FileURL     string        `json:"fileUrl,omitempty"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// --- Chat ---

type chatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// --- Daily activities ---

type activityResponse struct {
	Message  string                `json:"message"`
	Activity *domain.DailyActivity `json:"activity"`
}

type activityUpdatedResponse struct {
	Message         string                `json:"message"`
	UpdatedActivity *domain.DailyActivity `json:"updatedActivity"`
}

type activityPageResponse struct {
	Activities  []*domain.DailyActivity `json:"activities"`
	CurrentPage int                     `json:"currentPage"`
	TotalPages  int                     `json:"totalPages"`
}

type messageResponse struct {
	Message string `json:"message"`
}
