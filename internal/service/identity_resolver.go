package service

import (
	"context"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenVerifier checks a signed credential and returns its claims.
type TokenVerifier interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// Session is a resolved principal plus the credential it was resolved from.
type Session struct {
	Principal entity.Principal
	Email     string
	TokenID   string
}

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*entity.Principal, error)
	ResolveSession(ctx context.Context, token string) (*Session, error)
}

type identityResolver struct {
	db         *gorm.DB
	log        *logrus.Logger
	verifier   TokenVerifier
	tokenStore TokenStore
	userRepo   repository.UserRepository
}

func NewIdentityResolver(
	db *gorm.DB,
	log *logrus.Logger,
	verifier TokenVerifier,
	tokenStore TokenStore,
	userRepo repository.UserRepository,
) IdentityResolver {
	return &identityResolver{
		db:         db,
		log:        log,
		verifier:   verifier,
		tokenStore: tokenStore,
		userRepo:   userRepo,
	}
}

func (r *identityResolver) Resolve(ctx context.Context, token string) (*entity.Principal, error) {
	session, err := r.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return &session.Principal, nil
}

// ResolveSession verifies the credential, then reads the subject. The role is
// taken from the stored user, never from the token claims.
func (r *identityResolver) ResolveSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperror.ErrInvalidCredential
	}

	claims, err := r.verifier.ValidateToken(token)
	if err != nil {
		return nil, apperror.ErrInvalidCredential.Wrap(err)
	}
	if claims.TokenType != jwt.AccessToken || claims.UserID == uuid.Nil {
		return nil, apperror.ErrInvalidCredential
	}

	active, err := r.tokenStore.IsAccessTokenActive(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, apperror.Infra(err)
	}
	if !active {
		return nil, apperror.ErrInvalidCredential.WithMessage("credential has been revoked")
	}

	user, err := r.userRepo.FindByID(ctx, r.db, claims.UserID)
	if err != nil {
		r.log.Warnf("Failed to find user %s while resolving identity: %+v", claims.UserID, err)
		return nil, apperror.Infra(err)
	}
	if user == nil {
		return nil, apperror.ErrSubjectNotFound
	}
	if !user.Active() {
		return nil, apperror.ErrSubjectDeactivated
	}

	role, ok := entity.RoleTypeFromID(user.RoleID)
	if !ok {
		r.log.Warnf("User %s has unknown role id %d", user.ID, user.RoleID)
		return nil, apperror.ErrInvalidCredential
	}

	return &Session{
		Principal: entity.Principal{SubjectID: user.ID, Role: role},
		Email:     user.Email,
		TokenID:   claims.TokenID,
	}, nil
}
