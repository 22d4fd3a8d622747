package models

type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to clinic staff (employment_status applies).
func (r Role) IsStaff() bool {
	return r == RoleDoctor || r == RoleReceptionist || r == RoleAdmin
}
