package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/safad/worklog/internal/core/domain"
)

// Exit codes returned by Execute.
const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 2
	exitUnauthorized = 3
	exitForbidden    = 4
	exitNotFound     = 5
	exitConflict     = 6
	exitInterrupted  = 130
)

// usageError marks bad flags or arguments detected by cobra.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

var errUnhealthy = errors.New("store is unhealthy")

// resolveError maps an error to an exit code and the message shown to the
// user. Unknown errors keep their own message; the cause is logged at debug.
func resolveError(err error, log zerolog.Logger) (int, string) {
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage, ue.Error()
	}
	var ve *validationError
	if errors.As(err, &ve) {
		return exitUsage, ve.Error()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted, "interrupted"
	case errors.Is(err, domain.ErrInvalidInput):
		return exitUsage, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return exitUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return exitUnauthorized, "not logged in, run: worklog login"
	case errors.Is(err, domain.ErrForbidden):
		return exitForbidden, "access forbidden"
	case errors.Is(err, domain.ErrProtectedAccount):
		return exitForbidden, "cannot delete or demote admin account"
	case errors.Is(err, domain.ErrNotFound):
		return exitNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateUsername):
		return exitConflict, "username already exists"
	case errors.Is(err, errUnhealthy):
		return exitFailure, err.Error()
	}

	log.Debug().Err(err).Msg("command failed")
	return exitFailure, err.Error()
}
