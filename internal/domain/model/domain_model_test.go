//go:build !integration

package model

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"cadi-backend/internal/domain"
)

// --- Role Tests ---

func TestParseRole(t *testing.T) {
	t.Run("should parse known roles case-insensitively", func(t *testing.T) {
		for in, want := range map[string]Role{
			"beneficiary": RoleBeneficiary,
			" ADMIN ":     RoleAdmin,
			"Professor":   RoleProfessor,
		} {
			got, err := ParseRole(in)
			if err != nil {
				t.Fatalf("ParseRole(%q) returned error: %v", in, err)
			}
			if got != want {
				t.Errorf("ParseRole(%q) = %s, want %s", in, got, want)
			}
		}
	})

	t.Run("should reject unknown roles", func(t *testing.T) {
		if _, err := ParseRole("STAFF"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should only let admins manage the catalog", func(t *testing.T) {
		if !RoleAdmin.CanManageCatalog() {
			t.Error("admin should manage catalog")
		}
		if RoleProfessor.CanManageCatalog() || RoleBeneficiary.CanManageCatalog() {
			t.Error("non-admin roles should not manage catalog")
		}
	})
}

func TestNewUser(t *testing.T) {
	t.Run("should create a beneficiary with an explicit profile", func(t *testing.T) {
		u, err := NewUser("", "ana", "ana@uni.edu")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if u.ID == "" || u.Profile.UserID != u.ID {
			t.Errorf("expected profile to be bound to user id, got %q / %q", u.ID, u.Profile.UserID)
		}
		if u.Profile.Role != RoleBeneficiary {
			t.Errorf("expected default role BENEFICIARY, got %s", u.Profile.Role)
		}
		if u.IsAdmin() {
			t.Error("new user should not be admin")
		}
	})

	t.Run("should fail with empty username", func(t *testing.T) {
		if _, err := NewUser("", "  ", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("should treat staff as admin", func(t *testing.T) {
		u, _ := NewUser("", "root", "")
		u.IsStaff = true
		if !u.IsAdmin() {
			t.Error("staff user should be admin")
		}
	})
}

// --- Activity Model Tests ---

func TestActivityValidate(t *testing.T) {
	start := time.Now().Add(time.Hour)

	t.Run("should default available spots to capacity", func(t *testing.T) {
		a, err := NewActivity("Yoga", CategoryWellbeing, start, start.Add(time.Hour), 15, "u1")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if a.AvailableSpots != 15 {
			t.Errorf("expected 15 available spots, got %d", a.AvailableSpots)
		}
	})

	t.Run("should reject end before start", func(t *testing.T) {
		_, err := NewActivity("Yoga", CategoryWellbeing, start, start.Add(-time.Minute), 10, "u1")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Fields["end"] != "validation.end_after_start" {
			t.Errorf("unexpected field errors: %v", verr.Fields)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Error("validation error should unwrap to ErrValidation")
		}
	})

	t.Run("should reject available spots above capacity", func(t *testing.T) {
		a := &Activity{Title: "x", Category: CategoryOther, Start: start, End: start.Add(time.Hour), Capacity: 2, AvailableSpots: 3}
		a.ApplyDefaults()
		var verr *ValidationError
		if !errors.As(a.Validate(), &verr) || verr.Fields["available_spots"] != "validation.spots_exceed_capacity" {
			t.Errorf("expected spots_exceed_capacity, got %v", a.Validate())
		}
	})
}

func TestActivitySpots(t *testing.T) {
	start := time.Now().Add(time.Hour)
	a, _ := NewActivity("Fútbol", CategorySport, start, start.Add(time.Hour), 1, "u1")

	if err := a.TakeSpot(); err != nil {
		t.Fatalf("first TakeSpot failed: %v", err)
	}
	if err := a.TakeSpot(); !errors.Is(err, domain.ErrActivityFull) {
		t.Fatalf("expected ErrActivityFull, got %v", err)
	}
	a.ReleaseSpot()
	if a.AvailableSpots != 1 {
		t.Errorf("expected 1 spot after release, got %d", a.AvailableSpots)
	}
	a.ReleaseSpot()
	if !a.ExceedsCapacity() {
		t.Error("ReleaseSpot is unclamped; expected ExceedsCapacity to report true")
	}
}

func TestActivityCheckinState(t *testing.T) {
	now := time.Now()
	a := &Activity{Capacity: 10}

	if a.CheckinStateAt(now) != CheckinNoToken {
		t.Fatal("expected NoToken on a fresh activity")
	}
	a.IssueCheckinToken("tok-1", now, 10*time.Minute)
	if a.CheckinStateAt(now.Add(5*time.Minute)) != CheckinTokenIssued {
		t.Error("expected Issued inside the TTL")
	}
	if a.CheckinStateAt(now.Add(11*time.Minute)) != CheckinTokenExpired {
		t.Error("expected Expired after the TTL")
	}
	a.IssueCheckinToken("tok-2", now, 10*time.Minute)
	if *a.CheckinToken != "tok-2" {
		t.Error("expected new token to replace the previous one")
	}

	a.RecountAttendance(12)
	if a.ActualAttendees != 12 || a.AvailableSpots != 0 {
		t.Errorf("expected 12 attendees and 0 spots, got %d / %d", a.ActualAttendees, a.AvailableSpots)
	}
}

func TestActivityDiffNotifiable(t *testing.T) {
	start := time.Now()
	prev := &Activity{Start: start, Location: "Coliseo", Status: ActivityStatusActive, Title: "A"}
	cur := *prev
	cur.Title = "B"
	if cur.DiffNotifiable(prev).Any() {
		t.Error("title change should not notify")
	}
	cur.Start = start.Add(time.Hour)
	if !cur.DiffNotifiable(prev).Start {
		t.Error("start change should notify")
	}
}

// --- Tournament Model Tests ---

func TestTournamentInscription(t *testing.T) {
	today := DateOnly(time.Now(), time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	t.Run("should reject closed tournaments", func(t *testing.T) {
		tr := &Tournament{Status: TournamentStatusFinished}
		if err := tr.CheckInscriptionOpen(today); !errors.Is(err, domain.ErrTournamentClosed) {
			t.Errorf("expected ErrTournamentClosed, got %v", err)
		}
	})

	t.Run("should reject before the window opens", func(t *testing.T) {
		tr := &Tournament{Status: TournamentStatusPlanned, InscriptionStart: &tomorrow}
		if err := tr.CheckInscriptionOpen(today); !errors.Is(err, domain.ErrInscriptionNotOpen) {
			t.Errorf("expected ErrInscriptionNotOpen, got %v", err)
		}
	})

	t.Run("should reject after the window ends", func(t *testing.T) {
		tr := &Tournament{Status: TournamentStatusPlanned, InscriptionEnd: &yesterday}
		if err := tr.CheckInscriptionOpen(today); !errors.Is(err, domain.ErrInscriptionEnded) {
			t.Errorf("expected ErrInscriptionEnded, got %v", err)
		}
	})

	t.Run("should accept on the last day of the window", func(t *testing.T) {
		tr := &Tournament{Status: TournamentStatusPlanned, InscriptionStart: &yesterday, InscriptionEnd: &today}
		if err := tr.CheckInscriptionOpen(today); err != nil {
			t.Errorf("expected window to be open, got %v", err)
		}
	})
}

func TestTournamentAvailableSlots(t *testing.T) {
	tr := &Tournament{MaxTeams: 0}
	if tr.AvailableSlots() != nil {
		t.Error("unlimited tournament should report nil slots")
	}
	if !tr.HasRoomFor(1000) {
		t.Error("unlimited tournament always has room")
	}
	tr = &Tournament{MaxTeams: 2, CurrentTeams: 3}
	if got := tr.AvailableSlots(); got == nil || *got != 0 {
		t.Errorf("expected 0 slots, got %v", got)
	}
	if tr.HasRoomFor(2) {
		t.Error("expected no room at max teams")
	}
}

func TestTournamentEnrollmentCancel(t *testing.T) {
	e := NewTournamentEnrollment("t1", "u1")
	if e.Status != EnrollmentConfirmed {
		t.Fatalf("expected confirmed default, got %s", e.Status)
	}
	if err := e.Cancel(); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := e.Cancel(); !errors.Is(err, domain.ErrEnrollmentCancelled) {
		t.Errorf("expected ErrEnrollmentCancelled, got %v", err)
	}
	e.Reactivate()
	if !e.Status.Active() {
		t.Error("reactivated enrollment should be active")
	}
}

// --- Notification / Campaign / Project ---

func TestPreferenceChannels(t *testing.T) {
	p := DefaultPreference("u1")
	if got := p.Channels(); len(got) != 2 || got[0] != ChannelApp || got[1] != ChannelEmail {
		t.Errorf("expected [app email], got %v", got)
	}
	p.EmailEnabled = false
	if got := p.Channels(); len(got) != 1 || got[0] != ChannelApp {
		t.Errorf("expected [app], got %v", got)
	}
	p.QuietHoursStart = "25:99"
	if err := p.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for bad quiet hours, got %v", err)
	}
}

func TestPreferenceQuietUntil(t *testing.T) {
	p := DefaultPreference("u1")
	p.QuietHoursStart = "22:00"
	p.QuietHoursEnd = "07:00"

	late := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	until, ok := p.QuietUntil(late, time.UTC)
	if !ok || !until.Equal(time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("expected quiet until next morning, got %v (%v)", until, ok)
	}
	early := time.Date(2025, 3, 10, 6, 15, 0, 0, time.UTC)
	until, ok = p.QuietUntil(early, time.UTC)
	if !ok || !until.Equal(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("expected quiet until 07:00 today, got %v (%v)", until, ok)
	}
	if _, ok := p.QuietUntil(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC); ok {
		t.Error("noon should not be quiet")
	}
}

func TestCampaignValidate(t *testing.T) {
	if _, err := NewCampaign("Aviso", "Hola", ChannelOptionBoth, SegmentSelected, "admin"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("selected segment without ids should fail, got %v", err)
	}
	c, err := NewCampaign("Aviso", "Hola", ChannelOptionApp, SegmentAll, "admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.ChannelOption.Allows(ChannelEmail) {
		t.Error("app-only campaign should not allow email")
	}
	past := time.Now().Add(-time.Minute)
	c.ScheduleAt = &past
	if !c.Due(time.Now()) {
		t.Error("campaign with past schedule should be due")
	}
}

func TestProjectQuota(t *testing.T) {
	p, err := NewProject("Huerta", ProjectVolunteer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.TotalQuota != DefaultProjectQuota {
		t.Errorf("expected default quota %d, got %d", DefaultProjectQuota, p.TotalQuota)
	}
	p.Confirmed = 25
	if p.AvailableQuota() != 0 {
		t.Errorf("available quota should clamp at 0, got %d", p.AvailableQuota())
	}
	if err := p.CheckEnrollable(); !errors.Is(err, domain.ErrProjectFull) {
		t.Errorf("expected ErrProjectFull, got %v", err)
	}
}

func TestNotificationTitle(t *testing.T) {
	t.Run("should keep titles that fit the column", func(t *testing.T) {
		title := "Actualización de actividad: " + strings.Repeat("a", 200)
		n := NewNotification("u-1", ChannelApp, title, "")
		if n.Title != title {
			t.Errorf("expected title unchanged, got %d runes", utf8.RuneCountInString(n.Title))
		}
	})

	t.Run("should cut long titles on a rune boundary", func(t *testing.T) {
		n := NewNotification("u-1", ChannelEmail, strings.Repeat("ñ", 300), "")
		if got := utf8.RuneCountInString(n.Title); got != NotificationTitleMaxLen {
			t.Errorf("expected %d runes, got %d", NotificationTitleMaxLen, got)
		}
		if !utf8.ValidString(n.Title) {
			t.Error("title is not valid utf-8")
		}
	})
}
