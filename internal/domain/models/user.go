package models

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	StatusActive = "ACTIVE"
)

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PasswordHash  string     `json:"-"` // never serialized
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	LastLogin     *time.Time `json:"lastLogin"`
	TotalBookings int        `json:"totalBookings"`
	TotalSpent    int64      `json:"totalSpent"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NormalizeRole coerces arbitrary input into the two supported roles.
// Anything outside {USER, ADMIN} becomes USER.
func NormalizeRole(role string) string {
	switch role {
	case RoleUser, RoleAdmin:
		return role
	}
	return RoleUser
}
