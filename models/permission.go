package models

type Resource string

const (
	ResourceAppointments    Resource = "appointments"
	ResourceMedicalRecords  Resource = "medical_records"
	ResourceMedicines       Resource = "medicines"
	ResourceSuppliers       Resource = "suppliers"
	ResourceSpecialties     Resource = "specialties"
	ResourceExaminationFees Resource = "examination_fees"
	ResourceDoctors         Resource = "doctors"
	ResourcePatients        Resource = "patients"
	ResourceStaff           Resource = "staff"
	ResourceReports         Resource = "reports"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionList     Action = "list"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionCancel   Action = "cancel"
	ActionCheckIn  Action = "check_in"
	ActionComplete Action = "complete"
	ActionDispense Action = "dispense"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID uint
	Role   Role
}

// Permission grants an action to a set of roles. When OwnerRole is set, an actor with that
// role is also granted the action on resources it owns.
type Permission struct {
	Roles     []Role
	OwnerRole Role
}

var (
	staff      = []Role{RoleAdmin, RoleDoctor, RoleReceptionist}
	frontDesk  = []Role{RoleAdmin, RoleReceptionist}
	adminOnly  = []Role{RoleAdmin}
	clinicians = []Role{RoleAdmin, RoleDoctor}
	everyone   = []Role{RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient}
)

var Permissions = map[Resource]map[Action]Permission{
	ResourceAppointments: {
		ActionCreate:   {Roles: frontDesk, OwnerRole: RolePatient},
		ActionList:     {Roles: staff},
		ActionRead:     {Roles: everyone},
		ActionUpdate:   {Roles: frontDesk, OwnerRole: RolePatient},
		ActionCancel:   {Roles: frontDesk, OwnerRole: RolePatient},
		ActionCheckIn:  {Roles: frontDesk},
		ActionComplete: {Roles: []Role{RoleDoctor}},
	},
	ResourceMedicalRecords: {
		ActionCreate:   {Roles: clinicians},
		ActionRead:     {Roles: staff, OwnerRole: RolePatient},
		ActionUpdate:   {Roles: clinicians},
		ActionDispense: {Roles: frontDesk},
	},
	ResourceMedicines: {
		ActionList:   {Roles: staff},
		ActionRead:   {Roles: staff},
		ActionCreate: {Roles: frontDesk},
		ActionUpdate: {Roles: frontDesk},
		ActionDelete: {Roles: adminOnly},
	},
	ResourceSuppliers: {
		ActionList:   {Roles: frontDesk},
		ActionRead:   {Roles: frontDesk},
		ActionCreate: {Roles: adminOnly},
		ActionUpdate: {Roles: adminOnly},
		ActionDelete: {Roles: adminOnly},
	},
	ResourceSpecialties: {
		ActionList:   {Roles: everyone},
		ActionCreate: {Roles: adminOnly},
		ActionUpdate: {Roles: adminOnly},
		ActionDelete: {Roles: adminOnly},
	},
	ResourceExaminationFees: {
		ActionList:   {Roles: everyone},
		ActionCreate: {Roles: adminOnly},
		ActionUpdate: {Roles: adminOnly},
		ActionDelete: {Roles: adminOnly},
	},
	ResourceDoctors: {
		ActionList:   {Roles: everyone},
		ActionRead:   {Roles: everyone},
		ActionCreate: {Roles: adminOnly},
		ActionUpdate: {Roles: adminOnly},
	},
	ResourcePatients: {
		ActionList:   {Roles: staff},
		ActionRead:   {Roles: staff, OwnerRole: RolePatient},
		ActionUpdate: {Roles: frontDesk, OwnerRole: RolePatient},
	},
	ResourceStaff: {
		ActionCreate: {Roles: adminOnly},
		ActionUpdate: {Roles: adminOnly},
	},
	ResourceReports: {
		ActionRead: {Roles: adminOnly},
	},
}

func (p Permission) hasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Allows is the route-level check: the role is granted outright or may act as an owner.
func (p Permission) Allows(role Role) bool {
	return p.hasRole(role) || (p.OwnerRole != "" && p.OwnerRole == role)
}

// Can reports whether actor may perform action on resource. ownerUserID is the user that owns
// the concrete resource, or 0 when ownership does not apply.
func Can(actor Actor, resource Resource, action Action, ownerUserID uint) bool {
	p, ok := Permissions[resource][action]
	if !ok {
		return false
	}
	if p.hasRole(actor.Role) {
		return true
	}
	return p.OwnerRole != "" && actor.Role == p.OwnerRole && ownerUserID != 0 && ownerUserID == actor.UserID
}
