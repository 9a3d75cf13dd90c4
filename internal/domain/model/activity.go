package model

import (
	"strings"
	"time"

	"cadi-backend/internal/domain"

	"github.com/google/uuid"
)

type ActivityCategory string

const (
	CategorySport     ActivityCategory = "DEPORTE"
	CategoryCulture   ActivityCategory = "CULTURA"
	CategoryEvent     ActivityCategory = "EVENTO"
	CategoryWellbeing ActivityCategory = "BIENESTAR"
	CategoryOther     ActivityCategory = "OTRO"
)

func (c ActivityCategory) Valid() bool {
	switch c {
	case CategorySport, CategoryCulture, CategoryEvent, CategoryWellbeing, CategoryOther:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool { return v == VisibilityPublic || v == VisibilityPrivate }

type ActivityStatus string

const (
	ActivityStatusActive    ActivityStatus = "active"
	ActivityStatusCancelled ActivityStatus = "cancelled"
	ActivityStatusFinished  ActivityStatus = "finished"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusActive, ActivityStatusCancelled, ActivityStatusFinished:
		return true
	}
	return false
}

// CheckinState is the per-activity check-in token lifecycle.
type CheckinState int

const (
	CheckinNoToken CheckinState = iota
	CheckinTokenIssued
	CheckinTokenExpired
)

// Activity is a scheduled event with a fixed capacity.
type Activity struct {
	ID                  string
	Title               string
	Category            ActivityCategory
	Description         string
	Location            string
	Start               time.Time
	End                 time.Time
	Capacity            int
	AvailableSpots      int
	Instructor          string
	Visibility          Visibility
	Status              ActivityStatus
	Tags                []string
	Notes               string
	ActualAttendees     int
	AssignedProfessorID *string
	CreatedBy           string
	CheckinToken        *string
	CheckinExpiresAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewActivity builds an activity with defaults applied. available_spots
// starts at capacity when not provided.
func NewActivity(title string, category ActivityCategory, start, end time.Time, capacity int, createdBy string) (*Activity, error) {
	now := time.Now()
	a := &Activity{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Category:   category,
		Start:      start,
		End:        end,
		Capacity:   capacity,
		Visibility: VisibilityPublic,
		Status:     ActivityStatusActive,
		Tags:       []string{},
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Activity) ApplyDefaults() {
	if a.Capacity > 0 && a.AvailableSpots == 0 {
		a.AvailableSpots = a.Capacity
	}
	if a.Visibility == "" {
		a.Visibility = VisibilityPublic
	}
	if a.Status == "" {
		a.Status = ActivityStatusActive
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
}

// Validate checks the save-time invariants.
func (a *Activity) Validate() error {
	verr := &ValidationError{}
	if a.Title == "" {
		verr.Add("title", "validation.required")
	}
	if !a.Category.Valid() {
		verr.Add("category", "validation.invalid_choice")
	}
	if !a.Visibility.Valid() {
		verr.Add("visibility", "validation.invalid_choice")
	}
	if !a.Status.Valid() {
		verr.Add("status", "validation.invalid_choice")
	}
	if a.Capacity < 0 {
		verr.Add("capacity", "validation.non_negative")
	}
	if a.AvailableSpots < 0 {
		verr.Add("available_spots", "validation.non_negative")
	}
	if !a.End.After(a.Start) {
		verr.Add("end", "validation.end_after_start")
	}
	if a.AvailableSpots > a.Capacity {
		verr.Add("available_spots", "validation.spots_exceed_capacity")
	}
	return verr.orNil()
}

// TakeSpot reserves one spot for a new enrollment.
func (a *Activity) TakeSpot() error {
	if a.AvailableSpots <= 0 {
		return domain.ErrActivityFull
	}
	a.AvailableSpots--
	a.UpdatedAt = time.Now()
	return nil
}

// ReleaseSpot returns one spot. It does not clamp to capacity; callers that
// care can check ExceedsCapacity afterwards.
func (a *Activity) ReleaseSpot() {
	a.AvailableSpots++
	a.UpdatedAt = time.Now()
}

func (a *Activity) ExceedsCapacity() bool { return a.AvailableSpots > a.Capacity }

func (a *Activity) IsAssignedTo(userID string) bool {
	return a.AssignedProfessorID != nil && *a.AssignedProfessorID == userID
}

// IssueCheckinToken replaces any previous token.
func (a *Activity) IssueCheckinToken(token string, now time.Time, ttl time.Duration) {
	exp := now.Add(ttl)
	a.CheckinToken = &token
	a.CheckinExpiresAt = &exp
	a.UpdatedAt = now
}

func (a *Activity) CheckinStateAt(now time.Time) CheckinState {
	if a.CheckinToken == nil || *a.CheckinToken == "" {
		return CheckinNoToken
	}
	if a.CheckinExpiresAt == nil || now.After(*a.CheckinExpiresAt) {
		return CheckinTokenExpired
	}
	return CheckinTokenIssued
}

// RecountAttendance sets attendee count and derives available spots from it.
func (a *Activity) RecountAttendance(attended int) {
	a.ActualAttendees = attended
	spots := a.Capacity - attended
	if spots < 0 {
		spots = 0
	}
	a.AvailableSpots = spots
	a.UpdatedAt = time.Now()
}

// ActivityChange lists the fields whose change notifies participants.
type ActivityChange struct {
	Start    bool
	Location bool
	Status   bool
}

func (c ActivityChange) Any() bool { return c.Start || c.Location || c.Status }

// DiffNotifiable compares against the previously persisted version.
func (a *Activity) DiffNotifiable(prev *Activity) ActivityChange {
	if prev == nil {
		return ActivityChange{}
	}
	return ActivityChange{
		Start:    !a.Start.Equal(prev.Start),
		Location: a.Location != prev.Location,
		Status:   a.Status != prev.Status,
	}
}

// ActivityEnrollment links a user to an activity.
type ActivityEnrollment struct {
	ID         string
	ActivityID string
	UserID     string
	Attended   bool
	EnrolledAt time.Time
}

func NewActivityEnrollment(activityID, userID string) *ActivityEnrollment {
	return &ActivityEnrollment{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		UserID:     userID,
		EnrolledAt: time.Now(),
	}
}

// ActivityEnrollmentView is an enrollment joined with its user.
type ActivityEnrollmentView struct {
	ActivityEnrollment
	User User
}
