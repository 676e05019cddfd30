package repository

import (
	"context"

	"clinic-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
	// EnsureDefaults inserts the built-in roles that are missing.
	EnsureDefaults(ctx context.Context, db *gorm.DB) error
}
