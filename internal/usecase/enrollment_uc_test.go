//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/usecase"
)

func TestEnrollmentUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	setup := func(capacity int) (usecase.EnrollmentUseCase, *MockActivityRepo, *MockActivityEnrollmentRepo, *model.Activity) {
		activities := NewMockActivityRepo()
		enrollments := NewMockActivityEnrollmentRepo()
		a := newTestActivity(capacity, "")
		activities.Seed(a)
		uc := usecase.NewEnrollmentUseCase(activities, enrollments, NewMockTxManager(), testLogger)
		return uc, activities, enrollments, a
	}

	t.Run("should keep spots and rows consistent for a capacity of one", func(t *testing.T) {
		uc, activities, enrollments, a := setup(1)

		res, err := uc.Enroll(ctx, "user-a", a.ID)
		if err != nil {
			t.Fatalf("first enroll failed: %v", err)
		}
		if !res.Created || res.Activity.AvailableSpots != 0 {
			t.Fatalf("expected created with 0 spots, got created=%v spots=%d", res.Created, res.Activity.AvailableSpots)
		}

		if _, err := uc.Enroll(ctx, "user-b", a.ID); !errors.Is(err, domain.ErrActivityFull) {
			t.Fatalf("expected ErrActivityFull, got %v", err)
		}

		after, err := uc.Unenroll(ctx, "user-a", a.ID)
		if err != nil {
			t.Fatalf("unenroll failed: %v", err)
		}
		if after.AvailableSpots != 1 {
			t.Errorf("expected 1 spot after unenroll, got %d", after.AvailableSpots)
		}

		if _, err := uc.Enroll(ctx, "user-b", a.ID); err != nil {
			t.Fatalf("enroll after release failed: %v", err)
		}
		stored, _ := activities.FindByID(ctx, nil, a.ID)
		if stored.AvailableSpots != 0 {
			t.Errorf("expected 0 spots stored, got %d", stored.AvailableSpots)
		}
		if n := enrollments.Count(a.ID); n != 1 {
			t.Errorf("expected 1 enrollment row, got %d", n)
		}
	})

	t.Run("should treat a repeated enroll as a no-op", func(t *testing.T) {
		uc, activities, enrollments, a := setup(5)

		if _, err := uc.Enroll(ctx, "user-a", a.ID); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}
		res, err := uc.Enroll(ctx, "user-a", a.ID)
		if err != nil {
			t.Fatalf("second enroll failed: %v", err)
		}
		if res.Created {
			t.Error("expected Created=false on repeat enroll")
		}
		if n := enrollments.Count(a.ID); n != 1 {
			t.Errorf("expected exactly one row, got %d", n)
		}
		stored, _ := activities.FindByID(ctx, nil, a.ID)
		if stored.AvailableSpots != 4 {
			t.Errorf("expected spots to drop once to 4, got %d", stored.AvailableSpots)
		}
	})

	t.Run("should hold the row lock for enroll and unenroll", func(t *testing.T) {
		uc, activities, _, a := setup(2)

		_, _ = uc.Enroll(ctx, "user-a", a.ID)
		_, _ = uc.Unenroll(ctx, "user-a", a.ID)

		if activities.Locks != 2 {
			t.Errorf("expected 2 locked reads, got %d", activities.Locks)
		}
	})

	t.Run("should reject unenroll when the user is not enrolled", func(t *testing.T) {
		uc, activities, _, a := setup(2)

		_, err := uc.Unenroll(ctx, "stranger", a.ID)
		if !errors.Is(err, domain.ErrNotEnrolled) {
			t.Fatalf("expected ErrNotEnrolled, got %v", err)
		}
		stored, _ := activities.FindByID(ctx, nil, a.ID)
		if stored.AvailableSpots != 2 {
			t.Errorf("spots must be untouched, got %d", stored.AvailableSpots)
		}
	})

	t.Run("should reject enrollment in a cancelled activity", func(t *testing.T) {
		uc, activities, _, a := setup(2)
		a.Status = model.ActivityStatusCancelled
		activities.Seed(a)

		if _, err := uc.Enroll(ctx, "user-a", a.ID); !errors.Is(err, domain.ErrActivityClosed) {
			t.Fatalf("expected ErrActivityClosed, got %v", err)
		}
	})

	t.Run("should return ErrNotFound for an unknown activity", func(t *testing.T) {
		uc, _, _, _ := setup(1)

		if _, err := uc.Enroll(ctx, "user-a", "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should not clamp spots above capacity on unenroll", func(t *testing.T) {
		uc, activities, enrollments, a := setup(2)
		// Counter already at capacity while a row still exists.
		_ = enrollments.Create(ctx, nil, model.NewActivityEnrollment(a.ID, "ghost"))

		after, err := uc.Unenroll(ctx, "ghost", a.ID)
		if err != nil {
			t.Fatalf("unenroll failed: %v", err)
		}
		if after.AvailableSpots != 3 {
			t.Errorf("expected 3 spots, got %d", after.AvailableSpots)
		}
		stored, _ := activities.FindByID(ctx, nil, a.ID)
		if stored.AvailableSpots != 3 {
			t.Errorf("expected stored 3 spots, got %d", stored.AvailableSpots)
		}
	})

	t.Run("should admit exactly capacity users under concurrent enrolls", func(t *testing.T) {
		uc, activities, enrollments, a := setup(3)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			ok   int
			full int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := uc.Enroll(ctx, "user-"+string(rune('a'+i)), a.ID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrActivityFull):
					full++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if ok != 3 || full != 7 {
			t.Errorf("expected 3 ok and 7 full, got %d and %d", ok, full)
		}
		stored, _ := activities.FindByID(ctx, nil, a.ID)
		if stored.AvailableSpots != 0 {
			t.Errorf("expected 0 spots, got %d", stored.AvailableSpots)
		}
		if n := enrollments.Count(a.ID); n != 3 {
			t.Errorf("expected 3 rows, got %d", n)
		}
	})
}
