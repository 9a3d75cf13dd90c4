package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"cadi-backend/internal/config"
	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	pg "cadi-backend/internal/infra/db/postgres"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/usecase"
)

// seed creates an admin account plus a small catalog for local testing.
// It is safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tm := pg.NewTxManager(pool)
	users := pg.NewPostgresUserRepo(pool)
	userUC := usecase.NewUserUseCase(users, pg.NewPreferenceRepo(pool), tm, logger)
	activityUC := usecase.NewActivityUseCase(pg.NewActivityRepo(pool), pg.NewActivityEnrollmentRepo(pool), users, nil, tm, logger)
	tournamentUC := usecase.NewTournamentUseCase(pg.NewTournamentRepo(pool), pg.NewTournamentEnrollmentRepo(pool), tm, cfg.Location(), logger)
	projectUC := usecase.NewProjectUseCase(pg.NewProjectRepo(pool), pg.NewProjectEnrollmentRepo(pool), tm, logger)

	// ---- Accounts ----
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	admin := ensureUser(ctx, userUC, users, usecase.RegisterInput{
		Username: "admin", Email: "admin@cadi.local", FirstName: "Administrador",
		Password1: password, Password2: password,
	})
	if admin.Profile.Role != model.RoleAdmin {
		admin.Profile.Role = model.RoleAdmin
		admin.IsStaff = true
		if err := users.Save(ctx, repository.NoTX, admin); err != nil {
			log.Fatalf("promote admin: %v", err)
		}
	}

	professor := ensureUser(ctx, userUC, users, usecase.RegisterInput{
		Username: "profesor", Email: "profesor@cadi.local", FirstName: "Laura", LastName: "Méndez",
		Password1: "profesor12345", Password2: "profesor12345",
	})
	if professor.Profile.Role != model.RoleProfessor {
		if professor, err = userUC.ChangeRole(ctx, admin, professor.ID, model.RoleProfessor); err != nil {
			log.Fatalf("promote professor: %v", err)
		}
	}

	ensureUser(ctx, userUC, users, usecase.RegisterInput{
		Username: "estudiante", Email: "estudiante@cadi.local", FirstName: "Diego", LastName: "Rojas",
		Password1: "estudiante12345", Password2: "estudiante12345",
	})

	// ---- Catalog ----
	existing, err := activityUC.List(ctx, repository.ActivityFilter{})
	if err != nil {
		log.Fatalf("list activities: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d activities already present. No changes.\n", len(existing))
		return
	}

	day := time.Now().In(cfg.Location()).Truncate(24 * time.Hour).Add(7 * 24 * time.Hour)
	activities := []struct {
		Title    string
		Category model.ActivityCategory
		Hour     int
		Capacity int
	}{
		{"Yoga al amanecer", model.CategoryWellbeing, 7, 20},
		{"Taller de fotografía", model.CategoryCulture, 15, 12},
		{"Fútbol sala mixto", model.CategorySport, 18, 24},
	}
	for i, s := range activities {
		start := day.Add(time.Duration(s.Hour) * time.Hour)
		a, err := model.NewActivity(s.Title, s.Category, start, start.Add(90*time.Minute), s.Capacity, admin.ID)
		if err != nil {
			log.Fatalf("build activity %q: %v", s.Title, err)
		}
		if i == 0 {
			a.AssignedProfessorID = &professor.ID
		}
		if _, err := activityUC.Create(ctx, admin, a); err != nil {
			log.Fatalf("create activity %q: %v", s.Title, err)
		}
		fmt.Printf("seeded activity: %s (capacity=%d)\n", a.Title, a.Capacity)
	}

	t, err := model.NewTournament("Copa Interfacultades", "Fútbol", day.Add(30*24*time.Hour), day.Add(32*24*time.Hour), 8, admin.ID)
	if err != nil {
		log.Fatalf("build tournament: %v", err)
	}
	inscStart, inscEnd := day, day.Add(14*24*time.Hour)
	t.InscriptionStart, t.InscriptionEnd = &inscStart, &inscEnd
	if _, err := tournamentUC.Create(ctx, admin, t); err != nil {
		log.Fatalf("create tournament: %v", err)
	}
	fmt.Printf("seeded tournament: %s (max_teams=%d)\n", t.Name, t.MaxTeams)

	p, err := model.NewProject("Alfabetización digital", model.ProjectVolunteer)
	if err != nil {
		log.Fatalf("build project: %v", err)
	}
	if _, err := projectUC.Create(ctx, admin, p); err != nil {
		log.Fatalf("create project: %v", err)
	}
	fmt.Printf("seeded project: %s (quota=%d)\n", p.Name, p.TotalQuota)

	fmt.Println("Seeding complete.")
}

func ensureUser(ctx context.Context, uc usecase.UserUseCase, users repository.UserRepository, in usecase.RegisterInput) *model.User {
	u, err := uc.Register(ctx, in)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		u, err = users.FindByUsername(ctx, repository.NoTX, in.Username)
		if err != nil {
			log.Fatalf("load %s: %v", in.Username, err)
		}
		fmt.Printf("%s already present\n", in.Username)
	case err != nil:
		log.Fatalf("register %s: %v", in.Username, err)
	default:
		fmt.Printf("seeded %s (id=%s)\n", in.Username, u.ID)
	}
	return u
}
