package model

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type CampaignSegment string

const (
	SegmentAll        CampaignSegment = "all"
	SegmentStudents   CampaignSegment = "students"
	SegmentProfessors CampaignSegment = "professors"
	SegmentSelected   CampaignSegment = "selected"
)

func (s CampaignSegment) Valid() bool {
	switch s {
	case SegmentAll, SegmentStudents, SegmentProfessors, SegmentSelected:
		return true
	}
	return false
}

type ChannelOption string

const (
	ChannelOptionApp   ChannelOption = "app"
	ChannelOptionEmail ChannelOption = "email"
	ChannelOptionBoth  ChannelOption = "both"
)

func (o ChannelOption) Valid() bool {
	return o == ChannelOptionApp || o == ChannelOptionEmail || o == ChannelOptionBoth
}

// Allows reports whether the campaign option includes the channel.
func (o ChannelOption) Allows(ch Channel) bool {
	switch o {
	case ChannelOptionBoth:
		return true
	case ChannelOptionApp:
		return ch == ChannelApp
	case ChannelOptionEmail:
		return ch == ChannelEmail
	}
	return false
}

// Campaign is a broadcast definition. Counters are recomputed from the
// notification rows after each dispatch.
type Campaign struct {
	ID              string
	Name            string
	Message         string
	ChannelOption   ChannelOption
	Segment         CampaignSegment
	SelectedUserIDs []string
	ScheduleAt      *time.Time
	TotalRecipients int
	AppSent         int
	EmailsSent      int
	CreatedBy       string
	CreatedAt       time.Time
	DispatchedAt    *time.Time
}

func NewCampaign(name, message string, opt ChannelOption, seg CampaignSegment, createdBy string) (*Campaign, error) {
	c := &Campaign{
		ID:              ulid.Make().String(),
		Name:            strings.TrimSpace(name),
		Message:         strings.TrimSpace(message),
		ChannelOption:   opt,
		Segment:         seg,
		SelectedUserIDs: []string{},
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Campaign) Validate() error {
	verr := &ValidationError{}
	if c.Name == "" {
		verr.Add("name", "validation.required")
	}
	if c.Message == "" {
		verr.Add("message", "validation.required")
	}
	if !c.ChannelOption.Valid() {
		verr.Add("channel_option", "validation.invalid_choice")
	}
	if !c.Segment.Valid() {
		verr.Add("segment", "validation.invalid_choice")
	}
	if c.Segment == SegmentSelected && len(c.SelectedUserIDs) == 0 {
		verr.Add("selected_user_ids", "validation.required")
	}
	return verr.orNil()
}

// Due reports whether a scheduled campaign should be dispatched now.
func (c *Campaign) Due(now time.Time) bool {
	return c.DispatchedAt == nil && c.ScheduleAt != nil && !c.ScheduleAt.After(now)
}

// CampaignCounters are aggregates over a campaign's notification rows.
type CampaignCounters struct {
	TotalRecipients int
	AppSent         int
	EmailsSent      int
}
