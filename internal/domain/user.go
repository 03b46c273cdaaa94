package domain

type Role string

const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleSupervisor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// CanOverrideSchedule — сообщение уходит сразу, минуя окно доступности.
func (r Role) CanOverrideSchedule() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// CanModerate — право soft-delete чужих сообщений.
func (r Role) CanModerate() bool {
	return r == RoleAdmin
}

type User struct {
	ID          int64  `db:"id"`
	Username    string `db:"username"`
	DisplayName string `db:"display_name"`
	Role        Role   `db:"role"`
}
