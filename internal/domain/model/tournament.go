package model

import (
	"encoding/json"
	"strings"
	"time"

	"cadi-backend/internal/domain"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentStatusPlanned   TournamentStatus = "planned"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusFinished  TournamentStatus = "finished"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusPlanned, TournamentStatusOngoing, TournamentStatusFinished, TournamentStatusCancelled:
		return true
	}
	return false
}

// Tournament is a multi-team event with an inscription window separate from
// the event window. CurrentTeams always mirrors the count of active enrollments.
type Tournament struct {
	ID               string
	Name             string
	Sport            string
	Format           string
	Description      string
	Location         string
	InscriptionStart *time.Time // date, UTC midnight
	InscriptionEnd   *time.Time // date, UTC midnight
	Start            time.Time
	End              time.Time
	Visibility       Visibility
	Status           TournamentStatus
	MaxTeams         int
	CurrentTeams     int
	Fixtures         json.RawMessage
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewTournament(name, sport string, start, end time.Time, maxTeams int, createdBy string) (*Tournament, error) {
	now := time.Now()
	t := &Tournament{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Sport:      strings.TrimSpace(sport),
		Start:      start,
		End:        end,
		Visibility: VisibilityPublic,
		Status:     TournamentStatusPlanned,
		MaxTeams:   maxTeams,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tournament) ApplyDefaults() {
	if t.Visibility == "" {
		t.Visibility = VisibilityPublic
	}
	if t.Status == "" {
		t.Status = TournamentStatusPlanned
	}
}

func (t *Tournament) Validate() error {
	verr := &ValidationError{}
	if t.Name == "" {
		verr.Add("name", "validation.required")
	}
	if t.Sport == "" {
		verr.Add("sport", "validation.required")
	}
	if !t.Status.Valid() {
		verr.Add("status", "validation.invalid_choice")
	}
	if !t.Visibility.Valid() {
		verr.Add("visibility", "validation.invalid_choice")
	}
	if t.MaxTeams < 0 {
		verr.Add("max_teams", "validation.non_negative")
	}
	if !t.End.After(t.Start) {
		verr.Add("end", "validation.end_after_start")
	}
	if t.InscriptionStart != nil && t.InscriptionEnd != nil && t.InscriptionEnd.Before(*t.InscriptionStart) {
		verr.Add("inscription_end", "validation.inscription_end_after_start")
	}
	return verr.orNil()
}

// AvailableSlots is nil for tournaments without a team limit.
func (t *Tournament) AvailableSlots() *int {
	if t.MaxTeams == 0 {
		return nil
	}
	n := t.MaxTeams - t.CurrentTeams
	if n < 0 {
		n = 0
	}
	return &n
}

// DateOnly truncates to a UTC calendar date in the given location.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckInscriptionOpen validates status and the inscription window for the
// given calendar day.
func (t *Tournament) CheckInscriptionOpen(today time.Time) error {
	switch t.Status {
	case TournamentStatusFinished, TournamentStatusCancelled:
		return domain.ErrTournamentClosed
	}
	if t.InscriptionStart != nil && today.Before(*t.InscriptionStart) {
		return domain.ErrInscriptionNotOpen
	}
	if t.InscriptionEnd != nil && today.After(*t.InscriptionEnd) {
		return domain.ErrInscriptionEnded
	}
	return nil
}

// HasRoomFor reports whether another active enrollment fits.
func (t *Tournament) HasRoomFor(active int) bool {
	return t.MaxTeams == 0 || active < t.MaxTeams
}

type TournamentEnrollmentStatus string

const (
	EnrollmentPending   TournamentEnrollmentStatus = "pending"
	EnrollmentConfirmed TournamentEnrollmentStatus = "confirmed"
	EnrollmentCancelled TournamentEnrollmentStatus = "cancelled"
)

// ActiveEnrollmentStatuses count towards CurrentTeams.
var ActiveEnrollmentStatuses = []TournamentEnrollmentStatus{EnrollmentPending, EnrollmentConfirmed}

func (s TournamentEnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentConfirmed, EnrollmentCancelled:
		return true
	}
	return false
}

func (s TournamentEnrollmentStatus) Active() bool {
	return s == EnrollmentPending || s == EnrollmentConfirmed
}

// TournamentEnrollment is never deleted, only moved between statuses.
type TournamentEnrollment struct {
	ID           string
	TournamentID string
	UserID       string
	Status       TournamentEnrollmentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewTournamentEnrollment(tournamentID, userID string) *TournamentEnrollment {
	now := time.Now()
	return &TournamentEnrollment{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Status:       EnrollmentConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (e *TournamentEnrollment) Cancel() error {
	if e.Status == EnrollmentCancelled {
		return domain.ErrEnrollmentCancelled
	}
	e.Status = EnrollmentCancelled
	e.UpdatedAt = time.Now()
	return nil
}

func (e *TournamentEnrollment) Reactivate() {
	e.Status = EnrollmentConfirmed
	e.UpdatedAt = time.Now()
}

// TournamentEnrollmentView is an enrollment joined with its user.
type TournamentEnrollmentView struct {
	TournamentEnrollment
	User User
}
