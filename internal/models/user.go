package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User correspond au blob persisté côté navigateur ; le hash ne sort jamais en JSON
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"-"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
