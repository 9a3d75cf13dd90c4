package model

import (
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

type Channel string

const (
	ChannelApp   Channel = "app"
	ChannelEmail Channel = "email"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is one message for one user over one channel.
// IDs are ULIDs so listing by ID follows creation order.
type Notification struct {
	ID           string
	UserID       string
	ActivityID   *string
	CampaignID   *string
	Title        string
	Body         string
	Channel      Channel
	Status       NotificationStatus
	Priority     Priority
	ScheduledFor *time.Time
	SentAt       *time.Time
	ReadAt       *time.Time
	Metadata     map[string]any
	CreatedAt    time.Time
	DeliveryLogs []DeliveryLog
}

// NotificationTitleMaxLen matches notifications.title in the schema.
const NotificationTitleMaxLen = 255

// NotificationTitle cuts a rendered title to NotificationTitleMaxLen runes.
func NotificationTitle(s string) string {
	if utf8.RuneCountInString(s) <= NotificationTitleMaxLen {
		return s
	}
	r := []rune(s)
	return string(r[:NotificationTitleMaxLen])
}

func NewNotification(userID string, ch Channel, title, body string) *Notification {
	return &Notification{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     NotificationTitle(title),
		Body:      body,
		Channel:   ch,
		Status:    NotificationPending,
		Priority:  PriorityNormal,
		Metadata:  map[string]any{},
		CreatedAt: time.Now(),
	}
}

// MarkSent records a successful delivery.
func (n *Notification) MarkSent(at time.Time) {
	n.Status = NotificationSent
	n.SentAt = &at
}

func (n *Notification) MarkFailed() { n.Status = NotificationFailed }

// MarkPending takes a scheduled notification out of the release queue.
func (n *Notification) MarkPending() { n.Status = NotificationPending }

// ScheduleFor defers delivery until the given time.
func (n *Notification) ScheduleFor(at time.Time) {
	n.Status = NotificationScheduled
	n.ScheduledFor = &at
}

func (n *Notification) MarkRead(at time.Time) bool {
	if n.ReadAt != nil {
		return false
	}
	n.ReadAt = &at
	return true
}

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryLog records one delivery attempt.
type DeliveryLog struct {
	ID             string
	NotificationID string
	Channel        Channel
	Status         DeliveryStatus
	Detail         string
	CreatedAt      time.Time
}

func NewDeliveryLog(notificationID string, ch Channel, st DeliveryStatus, detail string) *DeliveryLog {
	return &DeliveryLog{
		ID:             ulid.Make().String(),
		NotificationID: notificationID,
		Channel:        ch,
		Status:         st,
		Detail:         detail,
		CreatedAt:      time.Now(),
	}
}

// NotificationPreference is created with the user; missing rows fall back
// to DefaultPreference.
type NotificationPreference struct {
	UserID          string
	EmailEnabled    bool
	AppEnabled      bool
	PushEnabled     bool
	SmsEnabled      bool
	QuietHoursStart string // "HH:MM" or empty
	QuietHoursEnd   string
	UpdatedAt       time.Time
}

func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:       userID,
		EmailEnabled: true,
		AppEnabled:   true,
		UpdatedAt:    time.Now(),
	}
}

// Channels returns enabled delivery channels in a stable order.
func (p *NotificationPreference) Channels() []Channel {
	var out []Channel
	if p.AppEnabled {
		out = append(out, ChannelApp)
	}
	if p.EmailEnabled {
		out = append(out, ChannelEmail)
	}
	return out
}

func (p *NotificationPreference) Validate() error {
	verr := &ValidationError{}
	if p.QuietHoursStart != "" {
		if _, err := time.Parse("15:04", p.QuietHoursStart); err != nil {
			verr.Add("quiet_hours_start", "validation.time_format")
		}
	}
	if p.QuietHoursEnd != "" {
		if _, err := time.Parse("15:04", p.QuietHoursEnd); err != nil {
			verr.Add("quiet_hours_end", "validation.time_format")
		}
	}
	return verr.orNil()
}

func clockMinutes(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// QuietUntil returns the end of the quiet period that contains now, if any.
// Windows may wrap midnight ("22:00" to "07:00").
func (p *NotificationPreference) QuietUntil(now time.Time, loc *time.Location) (time.Time, bool) {
	start, ok1 := clockMinutes(p.QuietHoursStart)
	end, ok2 := clockMinutes(p.QuietHoursEnd)
	if !ok1 || !ok2 || start == end {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	mins := local.Hour()*60 + local.Minute()
	endToday := time.Date(local.Year(), local.Month(), local.Day(), end/60, end%60, 0, 0, loc)

	if start < end {
		if mins >= start && mins < end {
			return endToday, true
		}
		return time.Time{}, false
	}
	if mins >= start {
		return endToday.AddDate(0, 0, 1), true
	}
	if mins < end {
		return endToday, true
	}
	return time.Time{}, false
}
