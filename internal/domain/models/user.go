package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Label returns the role caption used in exported reports.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "管理者"
	}

	return "志愿者"
}

type User struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Password []byte `db:"password" json:"-"`
	Role     Role   `db:"role" json:"role"`
}

// UserInfo is the public view of a user; the password never leaves the service layer.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u User) Info() UserInfo {
	return UserInfo{
		ID:   u.ID,
		Name: u.Name,
		Role: u.Role,
	}
}
