//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	prefs := NewPreferenceRepo(testPool)
	ctx := context.Background()

	t.Run("should create user with profile and update both", func(t *testing.T) {
		cleanup(t)

		newUser, err := model.NewUser("", "integration_user", "ana@uni.edu")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		sem := 3
		newUser.Profile.Semester = &sem
		if err := repo.Create(ctx, nil, newUser); err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}

		found, err := repo.FindByUsername(ctx, nil, "integration_user")
		if err != nil {
			t.Fatalf("Failed to find user by username: %v", err)
		}
		if found.ID != newUser.ID || found.Profile.Role != model.RoleBeneficiary {
			t.Errorf("unexpected user: %+v", found)
		}
		if found.Profile.Semester == nil || *found.Profile.Semester != 3 {
			t.Errorf("expected semester 3, got %v", found.Profile.Semester)
		}

		found.Username = "updated_user"
		_ = found.SetRole(model.RoleProfessor)
		if err := repo.Save(ctx, nil, found); err != nil {
			t.Fatalf("Failed to update user: %v", err)
		}
		updated, err := repo.FindByID(ctx, nil, found.ID)
		if err != nil {
			t.Fatalf("Failed to find user by ID: %v", err)
		}
		if updated.Username != "updated_user" || updated.Profile.Role != model.RoleProfessor {
			t.Errorf("update not persisted: %+v", updated)
		}

		professors, err := repo.ListByRole(ctx, nil, model.RoleProfessor)
		if err != nil || len(professors) != 1 {
			t.Fatalf("expected one professor, got %d (%v)", len(professors), err)
		}
	})

	t.Run("should reject duplicate usernames", func(t *testing.T) {
		cleanup(t)
		u1, _ := model.NewUser("", "dup", "")
		u2, _ := model.NewUser("", "dup", "")
		if err := repo.Create(ctx, nil, u1); err != nil {
			t.Fatalf("Create u1 failed: %v", err)
		}
		if err := repo.Create(ctx, nil, u2); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("should return not found for missing user and preference", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := prefs.Get(ctx, nil, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for preference, got %v", err)
		}
	})

	t.Run("should upsert preferences and count users", func(t *testing.T) {
		cleanup(t)
		u, _ := model.NewUser("", "pref_user", "")
		if err := repo.Create(ctx, nil, u); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		p := model.DefaultPreference(u.ID)
		p.EmailEnabled = false
		if err := prefs.Upsert(ctx, nil, p); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := prefs.Get(ctx, nil, u.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.EmailEnabled {
			t.Error("expected email to be disabled")
		}
		all, err := repo.List(ctx, nil, 0, 0)
		if err != nil || len(all) != 1 {
			t.Errorf("expected 1 user, got %d (%v)", len(all), err)
		}
	})
}
