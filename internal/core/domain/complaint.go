package domain

import "time"

// Well-known complaint statuses. The set is open: admins may apply any
// non-empty status string.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Complaint is a citizen-filed issue report.
type Complaint struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// Revision changes on every persisted write.
	Revision string `json:"-"`
}

// Owner is the subset of User fields populated on admin-facing complaint views.
type Owner struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
}

// ComplaintWithOwner is a complaint joined with its owner. Owner is nil when
// the referenced user no longer exists.
type ComplaintWithOwner struct {
	Complaint
	Owner *Owner
}

// OwnerOf projects a User onto the populated owner view.
func OwnerOf(u *User) *Owner {
	if u == nil {
		return nil
	}
	return &Owner{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
	}
}
