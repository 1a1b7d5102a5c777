package models

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTrader Role = "trader"
)

// User — текущий пользователь сессии (id + username из профиля).
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
