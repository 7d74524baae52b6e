package handler

import (
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Password:  req.Password,
	}
}

func toAdminInput(req createAdminRequest) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	}
}

// --- Domain → Response ---

func toUserSummary(u *domain.User) userSummary {
	return userSummary{ID: u.ID, FirstName: u.FirstName, Email: u.Email, Role: u.Role}
}

func toAdminView(u *domain.User) adminView {
	return adminView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	}
}

func toPopulated(c *domain.ComplaintWithOwner) populatedComplaint {
	return populatedComplaint{
		ID:          c.ID,
		UserID:      c.Owner,
		Category:    c.Category,
		Subcategory: c.Subcategory,
		Description: c.Description,
		FileURL:     c.FileURL,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toPopulatedList(items []*domain.ComplaintWithOwner) []populatedComplaint {
	out := make([]populatedComplaint, 0, len(items))
	for _, c := range items {
		out = append(out, toPopulated(c))
	}
	return out
}
