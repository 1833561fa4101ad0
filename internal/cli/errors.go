package cli

import (
	"errors"

	"moodboard/internal/model"
	"moodboard/internal/pinterest"
	"moodboard/internal/repo"
	"moodboard/internal/store"
)

var errNoBoard = errors.New("no board selected; pass --board or run `moodboard boards use <board-id>`")

// Exit codes returned by the moodboard binary.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInvalid     = 2
	ExitNotFound    = 3
	ExitStorage     = 4
	ExitUnavailable = 5
)

// ExitCode classifies err for the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ve model.ValidationError
	var nf repo.NotFoundError
	var se *store.StorageError
	switch {
	case errors.As(err, &ve), errors.Is(err, errNoBoard):
		return ExitInvalid
	case errors.As(err, &nf):
		return ExitNotFound
	case errors.Is(err, pinterest.ErrNotImplemented):
		return ExitUnavailable
	case errors.As(err, &se):
		return ExitStorage
	default:
		return ExitError
	}
}
