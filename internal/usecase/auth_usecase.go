package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-scheduler/internal/converter"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/jwt"
	"clinic-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidLogin = apperror.ErrInvalidCredential.WithMessage("invalid email or password")

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session service.Session, req *dto.LogoutRequest) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, principal entity.Principal) (*dto.UserResponse, error)
	SetUserActive(ctx context.Context, principal entity.Principal, userID uuid.UUID, active bool) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	jwtService         *jwt.JWTService
	tokenStore         service.TokenStore
	auditService       service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
		auditService:       auditService,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	dob, err := time.Parse(validator.DateLayout, req.DateOfBirth)
	if err != nil {
		return nil, apperror.ErrInvalidField.WithMessage("date_of_birth must use the YYYY-MM-DD format")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.createUser(ctx, tx, entity.RolePatient, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	patientProfile := &entity.PatientProfile{
		UserID:      user.ID,
		NIK:         req.NIK,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Address:     req.Address,
	}
	if err := u.patientProfileRepo.Create(ctx, tx, patientProfile); err != nil {
		if isDuplicateKeyError(err, "nik") {
			return nil, apperror.ErrProfileAlreadyExists.WithMessage("NIK already exists")
		}
		u.log.Warnf("Failed to create patient profile: %+v", err)
		return nil, apperror.Infra(err)
	}
	user.PatientProfile = patientProfile

	if err := u.commitRegistration(ctx, tx, user); err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.createUser(ctx, tx, entity.RoleDoctor, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	available := true
	doctorProfile := &entity.DoctorProfile{
		UserID:         user.ID,
		STRNumber:      req.STRNumber,
		Specialization: req.Specialization,
		Biography:      req.Biography,
		IsAvailable:    &available,
	}
	if err := u.doctorProfileRepo.Create(ctx, tx, doctorProfile); err != nil {
		if isDuplicateKeyError(err, "str_number") {
			return nil, apperror.ErrProfileAlreadyExists.WithMessage("STR number already exists")
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, apperror.Infra(err)
	}
	user.DoctorProfile = doctorProfile

	if err := u.commitRegistration(ctx, tx, user); err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) createUser(ctx context.Context, tx *gorm.DB, roleName, email, password, fullName string) (*entity.User, error) {
	role, err := u.roleRepo.FindByName(ctx, tx, roleName)
	if err != nil {
		u.log.Warnf("Failed to find role %s: %+v", roleName, err)
		return nil, apperror.Infra(err)
	}
	if role == nil {
		u.log.Warnf("Role %s is not seeded", roleName)
		return nil, apperror.ErrStoreUnavailable.WithMessage("role " + roleName + " is not configured")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	active := true
	user := &entity.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashedPassword),
		FullName: fullName,
		RoleID:   role.ID,
		IsActive: &active,
	}
	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, apperror.ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, apperror.Infra(err)
	}
	user.Role = *role

	return user, nil
}

func (u *authUsecase) commitRegistration(ctx context.Context, tx *gorm.DB, user *entity.User) error {
	if err := u.auditService.LogCreate(ctx, tx, user.ID, entity.AuditActionUserRegister,
		"user", user.ID.String(), map[string]interface{}{"email": user.Email, "role": user.Role.RoleName}); err != nil {
		return apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return apperror.Infra(err)
	}

	u.log.Infof("User registered: id=%s, role=%s", user.ID, user.Role.RoleName)
	return nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, apperror.Infra(err)
	}
	if user == nil {
		return nil, errInvalidLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidLogin
	}
	if !user.Active() {
		return nil, apperror.ErrSubjectDeactivated
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email, user.RoleID)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, u.db, user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return tokens, nil
}

// Logout revokes the access token of the current session and, when given,
// the refresh token issued alongside it.
func (u *authUsecase) Logout(ctx context.Context, session service.Session, req *dto.LogoutRequest) error {
	var refreshTokenID string
	if req != nil && req.RefreshToken != "" {
		claims, err := u.jwtService.ValidateToken(req.RefreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == session.Principal.SubjectID {
			refreshTokenID = claims.TokenID
		}
	}

	if err := u.tokenStore.Revoke(ctx, session.Principal.SubjectID, session.TokenID, refreshTokenID); err != nil {
		return apperror.Infra(err)
	}

	if err := u.auditService.LogCreate(ctx, u.db, session.Principal.SubjectID, entity.AuditActionUserLogout,
		"user", session.Principal.SubjectID.String(), nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

// RefreshToken rotates the pair: the presented refresh token is consumed
// and cannot be used twice.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidCredential.Wrap(err)
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, apperror.ErrInvalidCredential
	}

	consumed, err := u.tokenStore.ConsumeRefreshToken(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, apperror.Infra(err)
	}
	if !consumed {
		return nil, apperror.ErrInvalidCredential.WithMessage("credential has been revoked")
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Infra(err)
	}
	if user == nil {
		return nil, apperror.ErrSubjectNotFound
	}
	if !user.Active() {
		return nil, apperror.ErrSubjectDeactivated
	}

	return u.issueTokens(ctx, user.ID, user.Email, user.RoleID)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, roleID int) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, userID, accessTokenID, refreshTokenID,
		u.jwtService.GetAccessExpiry(), u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, apperror.Infra(err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, principal entity.Principal) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, principal.SubjectID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Infra(err)
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	switch principal.Role {
	case entity.RoleTypeDoctor:
		user.DoctorProfile, err = u.doctorProfileRepo.FindByUserID(ctx, u.db, user.ID)
	case entity.RoleTypePatient:
		user.PatientProfile, err = u.patientProfileRepo.FindByUserID(ctx, u.db, user.ID)
	}
	if err != nil {
		u.log.Warnf("Failed to load profile of user %s: %+v", user.ID, err)
		return nil, apperror.Infra(err)
	}

	return converter.UserToResponse(user), nil
}

// SetUserActive lets an admin deactivate or reactivate an account.
// Deactivation revokes every token the user holds.
func (u *authUsecase) SetUserActive(ctx context.Context, principal entity.Principal, userID uuid.UUID, active bool) (*dto.UserResponse, error) {
	if !principal.IsAdmin() {
		return nil, apperror.ErrRoleNotPermitted
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.userRepo.SetActive(ctx, tx, userID, active)
	if err != nil {
		u.log.Warnf("Failed to update user %s: %+v", userID, err)
		return nil, apperror.Infra(err)
	}
	if affected == 0 {
		return nil, apperror.ErrUserNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, principal.SubjectID, entity.AuditActionUserStatus,
		"user", userID.String(), nil, map[string]interface{}{"is_active": active}); err != nil {
		return nil, apperror.Infra(err)
	}

	user, err := u.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, apperror.Infra(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, apperror.Infra(err)
	}

	if !active {
		if err := u.tokenStore.RevokeAll(ctx, userID); err != nil {
			u.log.Warnf("Failed to revoke tokens of deactivated user %s: %+v", userID, err)
		}
	}

	u.log.Infof("User %s active=%t by %s", userID, active, principal.SubjectID)
	return converter.UserToResponse(user), nil
}
