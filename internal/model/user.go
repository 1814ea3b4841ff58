package model

// UserRole is carried in the bearer credential issued by the auth service.
type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

func (r UserRole) CanManageModules() bool {
	return r == Teacher || r == Admin
}
