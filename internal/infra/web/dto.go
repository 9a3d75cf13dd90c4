package web

import (
	"encoding/json"
	"strings"
	"time"

	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/usecase"

	"github.com/oapi-codegen/runtime/types"
)

// ---------- accounts ----------

type registerRequest struct {
	Username  string       `json:"username" validate:"required,max=150"`
	Email     *types.Email `json:"email"`
	Password1 string       `json:"password1" validate:"required,min=8"`
	Password2 string       `json:"password2" validate:"required"`
	FirstName string       `json:"first_name" validate:"max=150"`
	LastName  string       `json:"last_name" validate:"max=150"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type profileResponse struct {
	Role          model.Role `json:"role"`
	RoleLabel     string     `json:"role_label"`
	IsAdmin       bool       `json:"is_admin"`
	IsBeneficiary bool       `json:"is_beneficiary"`
	PhoneNumber   string     `json:"phone_number"`
	Program       string     `json:"program"`
	Semester      *int       `json:"semester"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type userResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	IsStaff   bool            `json:"is_staff"`
	Profile   profileResponse `json:"profile"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		Profile: profileResponse{
			Role:          u.Profile.Role,
			RoleLabel:     u.Profile.Role.Label(),
			IsAdmin:       u.IsAdmin(),
			IsBeneficiary: u.IsBeneficiary(),
			PhoneNumber:   u.Profile.PhoneNumber,
			Program:       u.Profile.Program,
			Semester:      u.Profile.Semester,
			CreatedAt:     u.Profile.CreatedAt,
			UpdatedAt:     u.Profile.UpdatedAt,
		},
	}
}

type sessionResponse struct {
	OK   bool          `json:"ok"`
	User *userResponse `json:"user,omitempty"`
}

// ---------- activities ----------

type activityCreateRequest struct {
	Title             string                 `json:"title" validate:"required,max=200"`
	Category          model.ActivityCategory `json:"category" validate:"required"`
	Description       string                 `json:"description"`
	Location          string                 `json:"location" validate:"max=200"`
	Start             time.Time              `json:"start" validate:"required"`
	End               time.Time              `json:"end" validate:"required"`
	Capacity          int                    `json:"capacity" validate:"min=0"`
	AvailableSpots    *int                   `json:"available_spots" validate:"omitempty,min=0"`
	Instructor        string                 `json:"instructor" validate:"max=100"`
	Visibility        model.Visibility       `json:"visibility"`
	Status            model.ActivityStatus   `json:"status"`
	Tags              []string               `json:"tags"`
	Notes             string                 `json:"notes"`
	AssignedProfessor *string                `json:"assigned_professor"`
}

func (r *activityCreateRequest) toModel() *model.Activity {
	a := &model.Activity{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Location:    r.Location,
		Start:       r.Start,
		End:         r.End,
		Capacity:    r.Capacity,
		Instructor:  r.Instructor,
		Visibility:  r.Visibility,
		Status:      r.Status,
		Tags:        r.Tags,
		Notes:       r.Notes,
	}
	if r.AvailableSpots != nil {
		a.AvailableSpots = *r.AvailableSpots
	}
	if r.AssignedProfessor != nil && *r.AssignedProfessor != "" {
		a.AssignedProfessorID = r.AssignedProfessor
	}
	return a
}

// activityPatchRequest: absent fields keep their value. An empty
// assigned_professor clears the assignment.
type activityPatchRequest struct {
	Title             *string                 `json:"title" validate:"omitempty,max=200"`
	Category          *model.ActivityCategory `json:"category"`
	Description       *string                 `json:"description"`
	Location          *string                 `json:"location" validate:"omitempty,max=200"`
	Start             *time.Time              `json:"start"`
	End               *time.Time              `json:"end"`
	Capacity          *int                    `json:"capacity" validate:"omitempty,min=0"`
	AvailableSpots    *int                    `json:"available_spots" validate:"omitempty,min=0"`
	Instructor        *string                 `json:"instructor" validate:"omitempty,max=100"`
	Visibility        *model.Visibility       `json:"visibility"`
	Status            *model.ActivityStatus   `json:"status"`
	Tags              []string                `json:"tags"`
	Notes             *string                 `json:"notes"`
	AssignedProfessor *string                 `json:"assigned_professor"`
}

func (r *activityPatchRequest) toPatch() usecase.ActivityPatch {
	return usecase.ActivityPatch{
		Title:               r.Title,
		Category:            r.Category,
		Description:         r.Description,
		Location:            r.Location,
		Start:               r.Start,
		End:                 r.End,
		Capacity:            r.Capacity,
		AvailableSpots:      r.AvailableSpots,
		Instructor:          r.Instructor,
		Visibility:          r.Visibility,
		Status:              r.Status,
		Tags:                r.Tags,
		Notes:               r.Notes,
		AssignedProfessorID: r.AssignedProfessor,
	}
}

type professorPatchRequest struct {
	Notes    *string               `json:"notes"`
	Location *string               `json:"location" validate:"omitempty,max=200"`
	Status   *model.ActivityStatus `json:"status"`
}

type attendanceRequest struct {
	Attended    []string `json:"attended"`
	NotAttended []string `json:"not_attended"`
}

type activityResponse struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Category          model.ActivityCategory `json:"category"`
	Description       string                 `json:"description"`
	Location          string                 `json:"location"`
	Start             time.Time              `json:"start"`
	End               time.Time              `json:"end"`
	Capacity          int                    `json:"capacity"`
	AvailableSpots    int                    `json:"available_spots"`
	Instructor        string                 `json:"instructor"`
	AssignedProfessor *string                `json:"assigned_professor"`
	Visibility        model.Visibility       `json:"visibility"`
	Status            model.ActivityStatus   `json:"status"`
	Tags              []string               `json:"tags"`
	Notes             string                 `json:"notes"`
	ActualAttendees   int                    `json:"actual_attendees"`
	CheckinExpiresAt  *time.Time             `json:"checkin_expires_at"`
	CreatedBy         string                 `json:"created_by"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	RegisterURL       string                 `json:"register_url"`
}

func toActivityResponse(a *model.Activity) activityResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return activityResponse{
		ID:                a.ID,
		Title:             a.Title,
		Category:          a.Category,
		Description:       a.Description,
		Location:          a.Location,
		Start:             a.Start,
		End:               a.End,
		Capacity:          a.Capacity,
		AvailableSpots:    a.AvailableSpots,
		Instructor:        a.Instructor,
		AssignedProfessor: a.AssignedProfessorID,
		Visibility:        a.Visibility,
		Status:            a.Status,
		Tags:              tags,
		Notes:             a.Notes,
		ActualAttendees:   a.ActualAttendees,
		CheckinExpiresAt:  a.CheckinExpiresAt,
		CreatedBy:         a.CreatedBy,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		RegisterURL:       "/actividades/" + a.ID,
	}
}

func toActivityList(in []*model.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toActivityResponse(a))
	}
	return out
}

type activityEnrollmentResponse struct {
	ID         string       `json:"id"`
	User       userResponse `json:"user"`
	Attended   bool         `json:"attended"`
	EnrolledAt time.Time    `json:"enrolled_at"`
}

type enrollResponse struct {
	Detail   string           `json:"detail"`
	Activity activityResponse `json:"activity"`
}

type checkinRequest struct {
	Token string `json:"token"`
}

type checkinTicketResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	CheckinURL string    `json:"checkin_url"`
}

type checkinResultResponse struct {
	Detail          string `json:"detail"`
	ActivityID      string `json:"activity_id"`
	Attended        bool   `json:"attended"`
	AlreadyMarked   bool   `json:"already_marked"`
	ActualAttendees int    `json:"actual_attendees"`
	AvailableSpots  int    `json:"available_spots"`
}

// ---------- tournaments ----------

type tournamentCreateRequest struct {
	Name             string                 `json:"name" validate:"required,max=200"`
	Sport            string                 `json:"sport" validate:"required,max=100"`
	Format           string                 `json:"format" validate:"max=100"`
	Description      string                 `json:"description"`
	Location         string                 `json:"location" validate:"max=200"`
	InscriptionStart *types.Date            `json:"inscription_start"`
	InscriptionEnd   *types.Date            `json:"inscription_end"`
	Start            time.Time              `json:"start" validate:"required"`
	End              time.Time              `json:"end" validate:"required"`
	Visibility       model.Visibility       `json:"visibility"`
	Status           model.TournamentStatus `json:"status"`
	MaxTeams         int                    `json:"max_teams" validate:"min=0"`
	Fixtures         json.RawMessage        `json:"fixtures"`
}

func (r *tournamentCreateRequest) toModel() *model.Tournament {
	return &model.Tournament{
		Name:             r.Name,
		Sport:            r.Sport,
		Format:           r.Format,
		Description:      r.Description,
		Location:         r.Location,
		InscriptionStart: fromDate(r.InscriptionStart),
		InscriptionEnd:   fromDate(r.InscriptionEnd),
		Start:            r.Start,
		End:              r.End,
		Visibility:       r.Visibility,
		Status:           r.Status,
		MaxTeams:         r.MaxTeams,
		Fixtures:         r.Fixtures,
	}
}

// tournamentPatchRequest keeps the inscription dates raw so an explicit
// null can clear them.
type tournamentPatchRequest struct {
	Name             *string                 `json:"name" validate:"omitempty,max=200"`
	Sport            *string                 `json:"sport" validate:"omitempty,max=100"`
	Format           *string                 `json:"format" validate:"omitempty,max=100"`
	Description      *string                 `json:"description"`
	Location         *string                 `json:"location" validate:"omitempty,max=200"`
	InscriptionStart json.RawMessage         `json:"inscription_start"`
	InscriptionEnd   json.RawMessage         `json:"inscription_end"`
	Start            *time.Time              `json:"start"`
	End              *time.Time              `json:"end"`
	Visibility       *model.Visibility       `json:"visibility"`
	Status           *model.TournamentStatus `json:"status"`
	MaxTeams         *int                    `json:"max_teams" validate:"omitempty,min=0"`
	Fixtures         json.RawMessage         `json:"fixtures"`
}

func (r *tournamentPatchRequest) toPatch() (usecase.TournamentPatch, error) {
	p := usecase.TournamentPatch{
		Name:        r.Name,
		Sport:       r.Sport,
		Format:      r.Format,
		Description: r.Description,
		Location:    r.Location,
		Start:       r.Start,
		End:         r.End,
		Visibility:  r.Visibility,
		Status:      r.Status,
		MaxTeams:    r.MaxTeams,
		Fixtures:    r.Fixtures,
	}
	var err error
	if p.InscriptionStart, err = optionalDate("inscription_start", r.InscriptionStart); err != nil {
		return p, err
	}
	if p.InscriptionEnd, err = optionalDate("inscription_end", r.InscriptionEnd); err != nil {
		return p, err
	}
	return p, nil
}

// optionalDate returns nil when the field is absent, a pointer to nil for an
// explicit null, and the parsed date otherwise.
func optionalDate(field string, raw json.RawMessage) (**time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var d *types.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, model.NewValidationError(field, "validation.date_format")
	}
	v := fromDate(d)
	return &v, nil
}

func fromDate(d *types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}

func toDate(t *time.Time) *types.Date {
	if t == nil {
		return nil
	}
	return &types.Date{Time: *t}
}

type tournamentEnrollmentResponse struct {
	ID        string                           `json:"id"`
	User      *userResponse                    `json:"user,omitempty"`
	Status    model.TournamentEnrollmentStatus `json:"status"`
	CreatedAt time.Time                        `json:"created_at"`
	UpdatedAt time.Time                        `json:"updated_at"`
}

func toTournamentEnrollmentResponse(e *model.TournamentEnrollment) *tournamentEnrollmentResponse {
	if e == nil {
		return nil
	}
	return &tournamentEnrollmentResponse{
		ID:        e.ID,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type tournamentResponse struct {
	ID               string                        `json:"id"`
	Name             string                        `json:"name"`
	Sport            string                        `json:"sport"`
	Format           string                        `json:"format"`
	Description      string                        `json:"description"`
	Location         string                        `json:"location"`
	InscriptionStart *types.Date                   `json:"inscription_start"`
	InscriptionEnd   *types.Date                   `json:"inscription_end"`
	Start            time.Time                     `json:"start"`
	End              time.Time                     `json:"end"`
	Visibility       model.Visibility              `json:"visibility"`
	Status           model.TournamentStatus        `json:"status"`
	MaxTeams         int                           `json:"max_teams"`
	CurrentTeams     int                           `json:"current_teams"`
	AvailableSlots   *int                          `json:"available_slots"`
	Fixtures         json.RawMessage               `json:"fixtures"`
	CreatedBy        string                        `json:"created_by"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
	Enrollment       *tournamentEnrollmentResponse `json:"enrollment"`
}

func toTournamentResponse(t *model.Tournament, e *model.TournamentEnrollment) tournamentResponse {
	fixtures := t.Fixtures
	if len(fixtures) == 0 {
		fixtures = json.RawMessage("null")
	}
	return tournamentResponse{
		ID:               t.ID,
		Name:             t.Name,
		Sport:            t.Sport,
		Format:           t.Format,
		Description:      t.Description,
		Location:         t.Location,
		InscriptionStart: toDate(t.InscriptionStart),
		InscriptionEnd:   toDate(t.InscriptionEnd),
		Start:            t.Start,
		End:              t.End,
		Visibility:       t.Visibility,
		Status:           t.Status,
		MaxTeams:         t.MaxTeams,
		CurrentTeams:     t.CurrentTeams,
		AvailableSlots:   t.AvailableSlots(),
		Fixtures:         fixtures,
		CreatedBy:        t.CreatedBy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Enrollment:       toTournamentEnrollmentResponse(e),
	}
}

type tournamentEnrollResponse struct {
	Detail     string                        `json:"detail"`
	Tournament tournamentResponse            `json:"tournament"`
	Enrollment *tournamentEnrollmentResponse `json:"enrollment,omitempty"`
}

type enrollmentStatusRequest struct {
	Status model.TournamentEnrollmentStatus `json:"status" validate:"required"`
}

// ---------- projects ----------

type projectCreateRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Type        model.ProjectType   `json:"type"`
	Area        string              `json:"area" validate:"max=100"`
	Subtype     string              `json:"subtype" validate:"max=100"`
	Description string              `json:"description"`
	TotalQuota  int                 `json:"total_quota" validate:"min=0"`
	StartDate   *types.Date         `json:"start_date"`
	EndDate     *types.Date         `json:"end_date"`
	Status      model.ProjectStatus `json:"status"`
}

func (r *projectCreateRequest) toModel() *model.Project {
	return &model.Project{
		Name:        r.Name,
		Type:        r.Type,
		Area:        r.Area,
		Subtype:     r.Subtype,
		Description: r.Description,
		TotalQuota:  r.TotalQuota,
		StartDate:   fromDate(r.StartDate),
		EndDate:     fromDate(r.EndDate),
		Status:      r.Status,
	}
}

type projectEnrollRequest struct {
	FullName string      `json:"full_name" validate:"required,max=200"`
	Email    types.Email `json:"email" validate:"required"`
	Phone    string      `json:"phone" validate:"max=30"`
}

type projectResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Type           model.ProjectType   `json:"type"`
	Area           string              `json:"area"`
	Subtype        string              `json:"subtype"`
	Description    string              `json:"description"`
	TotalQuota     int                 `json:"total_quota"`
	AvailableQuota int                 `json:"available_quota"`
	StartDate      *types.Date         `json:"start_date"`
	EndDate        *types.Date         `json:"end_date"`
	Status         model.ProjectStatus `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toProjectResponse(p *model.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Type:           p.Type,
		Area:           p.Area,
		Subtype:        p.Subtype,
		Description:    p.Description,
		TotalQuota:     p.TotalQuota,
		AvailableQuota: p.AvailableQuota(),
		StartDate:      toDate(p.StartDate),
		EndDate:        toDate(p.EndDate),
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type projectEnrollmentResponse struct {
	ID             string                        `json:"id"`
	ProjectID      string                        `json:"project"`
	FullName       string                        `json:"full_name"`
	Email          string                        `json:"email"`
	Phone          string                        `json:"phone"`
	Status         model.ProjectEnrollmentStatus `json:"status"`
	EnrollmentDate time.Time                     `json:"enrollment_date"`
}

// ---------- notifications ----------

type deliveryLogResponse struct {
	ID        string               `json:"id"`
	Channel   model.Channel        `json:"channel"`
	Status    model.DeliveryStatus `json:"status"`
	Detail    string               `json:"detail"`
	CreatedAt time.Time            `json:"created_at"`
}

type notificationResponse struct {
	ID           string                   `json:"id"`
	Activity     *string                  `json:"activity"`
	Campaign     *string                  `json:"campaign"`
	Title        string                   `json:"title"`
	Body         string                   `json:"body"`
	Channel      model.Channel            `json:"channel"`
	Status       model.NotificationStatus `json:"status"`
	Priority     model.Priority           `json:"priority"`
	ScheduledFor *time.Time               `json:"scheduled_for"`
	SentAt       *time.Time               `json:"sent_at"`
	ReadAt       *time.Time               `json:"read_at"`
	Metadata     map[string]any           `json:"metadata"`
	CreatedAt    time.Time                `json:"created_at"`
	DeliveryLogs []deliveryLogResponse    `json:"delivery_logs"`
}

func toNotificationResponse(n *model.Notification) notificationResponse {
	logs := make([]deliveryLogResponse, 0, len(n.DeliveryLogs))
	for _, l := range n.DeliveryLogs {
		logs = append(logs, deliveryLogResponse{
			ID:        l.ID,
			Channel:   l.Channel,
			Status:    l.Status,
			Detail:    l.Detail,
			CreatedAt: l.CreatedAt,
		})
	}
	meta := n.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return notificationResponse{
		ID:           n.ID,
		Activity:     n.ActivityID,
		Campaign:     n.CampaignID,
		Title:        n.Title,
		Body:         n.Body,
		Channel:      n.Channel,
		Status:       n.Status,
		Priority:     n.Priority,
		ScheduledFor: n.ScheduledFor,
		SentAt:       n.SentAt,
		ReadAt:       n.ReadAt,
		Metadata:     meta,
		CreatedAt:    n.CreatedAt,
		DeliveryLogs: logs,
	}
}

type preferenceRequest struct {
	EmailEnabled    *bool   `json:"email_enabled"`
	AppEnabled      *bool   `json:"app_enabled"`
	PushEnabled     *bool   `json:"push_enabled"`
	SmsEnabled      *bool   `json:"sms_enabled"`
	QuietHoursStart *string `json:"quiet_hours_start" validate:"omitempty,hhmm"`
	QuietHoursEnd   *string `json:"quiet_hours_end" validate:"omitempty,hhmm"`
}

func (r *preferenceRequest) apply(p *model.NotificationPreference) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.EmailEnabled, r.EmailEnabled)
	set(&p.AppEnabled, r.AppEnabled)
	set(&p.PushEnabled, r.PushEnabled)
	set(&p.SmsEnabled, r.SmsEnabled)
	if r.QuietHoursStart != nil {
		p.QuietHoursStart = *r.QuietHoursStart
	}
	if r.QuietHoursEnd != nil {
		p.QuietHoursEnd = *r.QuietHoursEnd
	}
}

type preferenceResponse struct {
	EmailEnabled    bool      `json:"email_enabled"`
	AppEnabled      bool      `json:"app_enabled"`
	PushEnabled     bool      `json:"push_enabled"`
	SmsEnabled      bool      `json:"sms_enabled"`
	QuietHoursStart *string   `json:"quiet_hours_start"`
	QuietHoursEnd   *string   `json:"quiet_hours_end"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toPreferenceResponse(p *model.NotificationPreference) preferenceResponse {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return preferenceResponse{
		EmailEnabled:    p.EmailEnabled,
		AppEnabled:      p.AppEnabled,
		PushEnabled:     p.PushEnabled,
		SmsEnabled:      p.SmsEnabled,
		QuietHoursStart: opt(p.QuietHoursStart),
		QuietHoursEnd:   opt(p.QuietHoursEnd),
		UpdatedAt:       p.UpdatedAt,
	}
}

// ---------- campaigns ----------

type campaignRequest struct {
	Name            string                `json:"name" validate:"required,max=200"`
	Message         string                `json:"message" validate:"required"`
	ChannelOption   model.ChannelOption   `json:"channel_option"`
	Segment         model.CampaignSegment `json:"segment"`
	SelectedUserIDs []string              `json:"selected_user_ids"`
	ScheduleAt      *time.Time            `json:"schedule_at"`
}

func (r *campaignRequest) toModel() *model.Campaign {
	c := &model.Campaign{
		Name:            strings.TrimSpace(r.Name),
		Message:         strings.TrimSpace(r.Message),
		ChannelOption:   r.ChannelOption,
		Segment:         r.Segment,
		SelectedUserIDs: r.SelectedUserIDs,
		ScheduleAt:      r.ScheduleAt,
	}
	if c.ChannelOption == "" {
		c.ChannelOption = model.ChannelOptionBoth
	}
	if c.Segment == "" {
		c.Segment = model.SegmentAll
	}
	return c
}

type campaignResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Message         string                `json:"message"`
	ChannelOption   model.ChannelOption   `json:"channel_option"`
	Segment         model.CampaignSegment `json:"segment"`
	SelectedUserIDs []string              `json:"selected_user_ids"`
	ScheduleAt      *time.Time            `json:"schedule_at"`
	TotalRecipients int                   `json:"total_recipients"`
	AppSent         int                   `json:"app_sent"`
	EmailsSent      int                   `json:"emails_sent"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	DispatchedAt    *time.Time            `json:"dispatched_at"`
}

func toCampaignResponse(c *model.Campaign) campaignResponse {
	ids := c.SelectedUserIDs
	if ids == nil {
		ids = []string{}
	}
	return campaignResponse{
		ID:              c.ID,
		Name:            c.Name,
		Message:         c.Message,
		ChannelOption:   c.ChannelOption,
		Segment:         c.Segment,
		SelectedUserIDs: ids,
		ScheduleAt:      c.ScheduleAt,
		TotalRecipients: c.TotalRecipients,
		AppSent:         c.AppSent,
		EmailsSent:      c.EmailsSent,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		DispatchedAt:    c.DispatchedAt,
	}
}

// parseDateParam reads a YYYY-MM-DD or RFC 3339 query value.
func parseDateParam(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(types.DateFormat, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, model.NewValidationError(field, "validation.date_format")
	}
	return &t, nil
}
