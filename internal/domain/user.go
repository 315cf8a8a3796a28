package domain

import "time"

type UserRole string

const (
	RoleRenter   UserRole = "RENTER"
	RoleOperator UserRole = "OPERATOR"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"created_on"`
}
