package models

// User roles known to the dashboard
const (
	RoleRestaurant = "restaurant"
	RoleAdmin      = "admin"
	RoleCustomer   = "customer"
)

// User is the authenticated account
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// UpdateDetailsRequest changes the account's name, email or phone
type UpdateDetailsRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// UpdatePasswordRequest changes the account password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}
