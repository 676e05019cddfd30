package usecase

import (
	"errors"
	"strings"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isDuplicateKeyError checks for a unique violation. constraintName narrows
// the match on PostgreSQL; an empty name matches any unique constraint.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" &&
			strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// missingResource hides whether a resource exists from principals that could
// not see it anyway.
func missingResource(principal entity.Principal, notFound *apperror.Error) error {
	if principal.IsAdmin() {
		return notFound
	}
	return apperror.ErrNotOwner
}

func toWarnings(failures []service.CascadeFailure) []dto.CascadeWarning {
	if len(failures) == 0 {
		return nil
	}
	warnings := make([]dto.CascadeWarning, len(failures))
	for i, failure := range failures {
		warnings[i] = dto.CascadeWarning{
			Code:    apperror.ErrPartialFailure.Code,
			Step:    failure.Step,
			Message: failure.Err.Error(),
		}
	}
	return warnings
}
