package domain

import "time"

// UserRole роль пользователя. Ролевая модель бинарная: admin / customer.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

// UserStatusActive статус действующей учетной записи
const UserStatusActive = "active"

// User represents an authenticated identity
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        *string
	Role         UserRole
	PasswordHash string
	Status       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
