package usecase

import (
	"context"
	"errors"
	"strings"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// UserUseCase covers accounts, sessions and role management.
type UserUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListProfessors(ctx context.Context) ([]*model.User, error)
	ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	prefs repository.PreferenceRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, prefs repository.PreferenceRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{
		users: users,
		prefs: prefs,
		tm:    tm,
		log:   logger,
	}
}

// Register creates the user, its profile and its notification preferences
// in one transaction.
func (u *userUC) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	if in.Password1 == "" {
		return nil, model.NewValidationError("password1", "validation.required")
	}
	if in.Password1 != in.Password2 {
		return nil, domain.ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser("", in.Username, in.Email)
	if err != nil {
		return nil, model.NewValidationError("username", "validation.required")
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.PasswordHash = string(hash)

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.users.FindByUsername(ctx, tx, user.Username); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if user.Email != "" {
			if _, err := u.users.FindByEmail(ctx, tx, user.Email); err == nil {
				return domain.ErrAlreadyExists
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		if err := u.users.Create(ctx, tx, user); err != nil {
			return err
		}
		return u.prefs.Upsert(ctx, tx, model.DefaultPreference(user.ID))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncUsersRegistered(string(user.Profile.Role))
	u.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate accepts a username or an e-mail address.
func (u *userUC) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Authenticate")()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = u.users.FindByEmail(ctx, repository.NoTX, identifier)
	} else {
		user, err = u.users.FindByUsername(ctx, repository.NoTX, identifier)
	}
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncLogin("unknown_user")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.IncLogin("bad_password")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.IncLogin("inactive")
		return nil, domain.ErrInvalidCredentials
	}

	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	metrics.IncLogin("ok")
	return user, nil
}

func (u *userUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByID")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) ListProfessors(ctx context.Context) ([]*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ListProfessors")()
	return u.users.ListByRole(ctx, repository.NoTX, model.RoleProfessor)
}

func (u *userUC) ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ChangeRole")()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var user *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := usr.SetRole(role); err != nil {
			return model.NewValidationError("role", "validation.invalid_choice")
		}
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		user = usr
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Str("role", string(role)).Msg("role changed")
	return user, nil
}

// requireAdmin maps every role explicitly.
func requireAdmin(actor *model.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if actor.IsStaff {
		return nil
	}
	switch actor.Profile.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleBeneficiary, model.RoleProfessor:
		return domain.ErrAdminRequired
	}
	return domain.ErrAdminRequired
}
