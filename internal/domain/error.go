package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidState       = errors.New("invalid state")
	ErrValidation         = errors.New("validation failed")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrRateLimited        = errors.New("too many requests")
)

// Business rule violations. Each wraps a category so callers can map with errors.Is.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	ErrNotAssignedProfessor = fmt.Errorf("%w: not the assigned professor", ErrForbidden)
	ErrAdminRequired        = fmt.Errorf("%w: admin role required", ErrForbidden)

	ErrActivityFull    = fmt.Errorf("%w: activity has no available spots", ErrInvalidState)
	ErrNotEnrolled     = fmt.Errorf("%w: user is not enrolled", ErrInvalidState)
	ErrActivityClosed  = fmt.Errorf("%w: activity does not accept enrollments", ErrInvalidState)
	ErrTokenMissing    = fmt.Errorf("%w: check-in token missing", ErrInvalidState)
	ErrTokenExpired    = fmt.Errorf("%w: check-in token expired", ErrInvalidState)
	ErrTokenNotFound   = fmt.Errorf("%w: check-in token not found", ErrNotFound)
	ErrAlreadyEnrolled = fmt.Errorf("%w: user already enrolled", ErrInvalidState)

	ErrTournamentClosed      = fmt.Errorf("%w: tournament does not accept enrollments", ErrInvalidState)
	ErrInscriptionNotOpen    = fmt.Errorf("%w: inscription window not open yet", ErrInvalidState)
	ErrInscriptionEnded      = fmt.Errorf("%w: inscription window has ended", ErrInvalidState)
	ErrTournamentFull        = fmt.Errorf("%w: tournament has no available slots", ErrInvalidState)
	ErrEnrollmentCancelled   = fmt.Errorf("%w: enrollment already cancelled", ErrInvalidState)
	ErrTournamentNotEnrolled = fmt.Errorf("%w: user has no tournament enrollment", ErrInvalidState)

	ErrProjectFull   = fmt.Errorf("%w: project has no available quota", ErrInvalidState)
	ErrProjectClosed = fmt.Errorf("%w: project is not accepting enrollments", ErrInvalidState)

	ErrCampaignAlreadyDispatched = fmt.Errorf("%w: campaign already dispatched", ErrInvalidState)
	ErrCampaignBusy              = fmt.Errorf("%w: campaign dispatch in progress", ErrInvalidState)

	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
)
