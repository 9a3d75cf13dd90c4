package model

import (
	"strings"
	"time"

	"cadi-backend/internal/domain"

	"github.com/google/uuid"
)

type ProjectType string

const (
	ProjectPSU       ProjectType = "PSU"
	ProjectVolunteer ProjectType = "VOLUNTEER"
)

type ProjectStatus string

const (
	ProjectStatusEnrollment ProjectStatus = "enrollment"
	ProjectStatusOngoing    ProjectStatus = "ongoing"
	ProjectStatusFinished   ProjectStatus = "finished"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

const DefaultProjectQuota = 20

// Project is a social-service or volunteering project with a quota.
type Project struct {
	ID          string
	Name        string
	Type        ProjectType
	Area        string
	Subtype     string
	Description string
	TotalQuota  int
	StartDate   *time.Time
	EndDate     *time.Time
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Confirmed is loaded alongside the project.
	Confirmed int
}

func NewProject(name string, typ ProjectType) (*Project, error) {
	now := time.Now()
	p := &Project{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Type:       typ,
		TotalQuota: DefaultProjectQuota,
		Status:     ProjectStatusEnrollment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) ApplyDefaults() {
	if p.Type == "" {
		p.Type = ProjectVolunteer
	}
	if p.Status == "" {
		p.Status = ProjectStatusEnrollment
	}
	if p.TotalQuota == 0 {
		p.TotalQuota = DefaultProjectQuota
	}
}

func (p *Project) Validate() error {
	verr := &ValidationError{}
	if p.Name == "" {
		verr.Add("name", "validation.required")
	}
	if p.Type != ProjectPSU && p.Type != ProjectVolunteer {
		verr.Add("type", "validation.invalid_choice")
	}
	switch p.Status {
	case ProjectStatusEnrollment, ProjectStatusOngoing, ProjectStatusFinished, ProjectStatusCancelled:
	default:
		verr.Add("status", "validation.invalid_choice")
	}
	if p.TotalQuota < 0 {
		verr.Add("total_quota", "validation.non_negative")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		verr.Add("end_date", "validation.end_after_start")
	}
	return verr.orNil()
}

func (p *Project) AvailableQuota() int {
	n := p.TotalQuota - p.Confirmed
	if n < 0 {
		return 0
	}
	return n
}

// CheckEnrollable validates a new enrollment against status and quota.
func (p *Project) CheckEnrollable() error {
	switch p.Status {
	case ProjectStatusFinished, ProjectStatusCancelled:
		return domain.ErrProjectClosed
	}
	if p.AvailableQuota() <= 0 {
		return domain.ErrProjectFull
	}
	return nil
}

type ProjectEnrollmentStatus string

const (
	ProjectEnrollmentPending   ProjectEnrollmentStatus = "pending"
	ProjectEnrollmentConfirmed ProjectEnrollmentStatus = "confirmed"
	ProjectEnrollmentRejected  ProjectEnrollmentStatus = "rejected"
	ProjectEnrollmentCancelled ProjectEnrollmentStatus = "cancelled"
)

// ProjectEnrollment is unique per (project, email).
type ProjectEnrollment struct {
	ID             string
	ProjectID      string
	UserID         *string
	FullName       string
	Email          string
	Phone          string
	Status         ProjectEnrollmentStatus
	EnrollmentDate time.Time
	UpdatedAt      time.Time
}

func NewProjectEnrollment(projectID, fullName, email, phone string, userID *string) *ProjectEnrollment {
	now := time.Now()
	return &ProjectEnrollment{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		UserID:         userID,
		FullName:       strings.TrimSpace(fullName),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Phone:          strings.TrimSpace(phone),
		Status:         ProjectEnrollmentConfirmed,
		EnrollmentDate: now,
		UpdatedAt:      now,
	}
}
