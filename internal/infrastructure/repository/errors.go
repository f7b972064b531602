package repository

import (
	"context"
	"errors"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
	"github.com/lib/pq"
)

// Postgres error codes the engine reacts to. The exclusion violation is the
// authoritative overlap guard: two concurrent bookings for the same room and
// range both pass the pre-flight check, but only one survives commit.
const (
	pqExclusionViolation   = "23P01"
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqCheckViolation       = "23514"
)

// mapWriteError converts driver-level failures into the engine's error
// taxonomy. Anything that is not a recognized conflict becomes a
// PersistenceError.
func mapWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Op: op}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqExclusionViolation:
			return domain.NewConflictError("reservation",
				"the requested dates were taken by a concurrent booking")
		case pqUniqueViolation:
			return domain.NewConflictError("record", "a record with the same key already exists")
		case pqSerializationFailure:
			return domain.NewConflictError("record", "the record was modified concurrently")
		case pqCheckViolation:
			return domain.NewValidationError("", "constraint %s violated", pqErr.Constraint)
		}
	}

	return domain.NewPersistenceError(op, err)
}
