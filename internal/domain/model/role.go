package model

import (
	"strings"

	"cadi-backend/internal/domain"
)

// Role is the closed set of profile roles.
type Role string

const (
	RoleBeneficiary Role = "BENEFICIARY"
	RoleAdmin       Role = "ADMIN"
	RoleProfessor   Role = "PROFESSOR"
)

// AllRoles lists every valid role in display order.
var AllRoles = []Role{RoleBeneficiary, RoleAdmin, RoleProfessor}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleBeneficiary:
		return RoleBeneficiary, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleProfessor:
		return RoleProfessor, nil
	}
	return "", domain.ErrInvalidArgument
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Label is the Spanish display name.
func (r Role) Label() string {
	switch r {
	case RoleBeneficiary:
		return "Beneficiario/Estudiante"
	case RoleAdmin:
		return "Administrador"
	case RoleProfessor:
		return "Profesor"
	}
	return string(r)
}

// CanManageCatalog reports whether the role may create, edit or delete
// activities, tournaments, projects and campaigns.
func (r Role) CanManageCatalog() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleBeneficiary, RoleProfessor:
		return false
	}
	return false
}

// CanBeAssignedToActivity reports whether a user with this role may be the
// responsible staff member of an activity.
func (r Role) CanBeAssignedToActivity() bool {
	switch r {
	case RoleProfessor:
		return true
	case RoleBeneficiary, RoleAdmin:
		return false
	}
	return false
}

// CampaignSegmentMember reports whether the role belongs to a campaign segment.
func (r Role) CampaignSegmentMember(seg CampaignSegment) bool {
	switch seg {
	case SegmentAll:
		return true
	case SegmentStudents:
		return r == RoleBeneficiary
	case SegmentProfessors:
		return r == RoleProfessor
	case SegmentSelected:
		return false
	}
	return false
}
