package repository

import (
	"context"

	"cadi-backend/internal/domain/model"
)

type TournamentFilter struct {
	Sport  string
	Status model.TournamentStatus
	Search string
}

type TournamentRepository interface {
	Create(ctx context.Context, tx Tx, t *model.Tournament) error
	Update(ctx context.Context, tx Tx, t *model.Tournament) error
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Tournament, error)
	// FindByIDForUpdate locks the tournament row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Tournament, error)
	List(ctx context.Context, tx Tx, f TournamentFilter) ([]*model.Tournament, error)
	SetCurrentTeams(ctx context.Context, tx Tx, id string, n int) error
}

type TournamentEnrollmentRepository interface {
	Find(ctx context.Context, tx Tx, tournamentID, userID string) (*model.TournamentEnrollment, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.TournamentEnrollment, error)
	Create(ctx context.Context, tx Tx, e *model.TournamentEnrollment) error
	UpdateStatus(ctx context.Context, tx Tx, e *model.TournamentEnrollment) error
	CountActive(ctx context.Context, tx Tx, tournamentID string) (int, error)
	ListByTournament(ctx context.Context, tx Tx, tournamentID string) ([]*model.TournamentEnrollmentView, error)
}
