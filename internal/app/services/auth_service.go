package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
	"github.com/rlopezj/catedra/internal/pkg/auth"
	"github.com/rlopezj/catedra/internal/pkg/validation"
)

// teacherStore is the slice of TeacherRepository the auth service needs.
type teacherStore interface {
	Create(ctx context.Context, teacher *models.Teacher) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.Teacher, error)
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// careerStore validates career references during registration.
type careerStore interface {
	GetByID(ctx context.Context, id int64) (*models.Career, error)
	GetAll(ctx context.Context) ([]models.Career, error)
}

// sessionStore is the server-side refresh token store.
type sessionStore interface {
	Create(ctx context.Context, teacherID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForTeacher(ctx context.Context, teacherID int64) error
	DeleteExpired(ctx context.Context) error
}

// ownedFileIndex lists the stored names owned by a teacher so account
// deletion can clean the uploads directory after the row cascade.
type ownedFileIndex interface {
	ListNamesByOwner(ctx context.Context, teacherID int64) ([]string, error)
}

// fileRemover deletes stored files during account cleanup.
type fileRemover interface {
	Delete(name string) error
}

// AuthService handles registration, login, sessions and profile
// management for teacher accounts.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TeacherResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, teacherID int64) (*dto.TeacherResponse, error)
	UpdateProfile(ctx context.Context, teacherID int64, req *dto.UpdateProfileRequest) (*dto.TeacherResponse, error)
	DeleteAccount(ctx context.Context, teacherID int64) error
	ListCareers(ctx context.Context) ([]dto.CareerResponse, error)
}

type authServiceImpl struct {
	teachers    teacherStore
	careers     careerStore
	sessions    sessionStore
	attachments ownedFileIndex
	storage     fileRemover
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	teachers teacherStore,
	careers careerStore,
	sessions sessionStore,
	attachments ownedFileIndex,
	storage fileRemover,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		teachers:    teachers,
		careers:     careers,
		sessions:    sessions,
		attachments: attachments,
		storage:     storage,
		jwtService:  jwtService,
		logger:      logger,
	}
}

func validateEmail(email string) error {
	if !validation.CompiledPatterns.Email.MatchString(strings.ToLower(email)) {
		return apperrors.NewBadRequestError("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < validation.PasswordMinLength {
		return apperrors.NewBadRequestError(
			fmt.Sprintf("password must be at least %d characters long", validation.PasswordMinLength))
	}
	hasLetter, hasDigit := false, false
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewBadRequestError("password must contain at least one letter and one digit")
	}
	return nil
}

// validateProfileFields checks the fields shared by registration and
// profile edit, and verifies the referenced career exists.
func (s *authServiceImpl) validateProfileFields(ctx context.Context, payrollNumber, fullName, campus, email string, careerID int64) error {
	if payrollNumber == "" || fullName == "" || campus == "" || email == "" || careerID <= 0 {
		return apperrors.NewBadRequestError("all required fields must be provided")
	}
	if !validation.CompiledPatterns.PayrollNumber.MatchString(payrollNumber) {
		return apperrors.NewBadRequestError("invalid payroll number format")
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	career, err := s.careers.GetByID(ctx, careerID)
	if err != nil {
		return fmt.Errorf("error validating career: %w", err)
	}
	if career == nil {
		return apperrors.NewCustomError(apperrors.ErrCareerNotFound, "the selected career does not exist").WithField("careerId")
	}
	return nil
}

func toTeacherResponse(t *models.Teacher) *dto.TeacherResponse {
	return &dto.TeacherResponse{
		ID:            t.ID,
		PayrollNumber: t.PayrollNumber,
		FullName:      t.FullName,
		Campus:        t.Campus,
		Email:         t.Email,
		CareerID:      t.CareerID,
	}
}

// Register validates the registration form and creates the account.
// Uniqueness conflicts on payroll number or email come back as
// field-specific errors from the repository.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TeacherResponse, error) {
	payroll := strings.TrimSpace(req.PayrollNumber)
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validateProfileFields(ctx, payroll, fullName, req.Campus, email, req.CareerID); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.NewBadRequestError("passwords do not match")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	teacher := &models.Teacher{
		PayrollNumber: payroll,
		FullName:      fullName,
		Campus:        req.Campus,
		Email:         email,
		PasswordHash:  hash,
		CareerID:      req.CareerID,
	}

	id, err := s.teachers.Create(ctx, teacher)
	if err != nil {
		return nil, err
	}
	teacher.ID = id

	s.logger.Info().Int64("teacherId", id).Str("payrollNumber", payroll).Msg("Teacher registered")
	return toTeacherResponse(teacher), nil
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password produce the same error.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	teacher, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error looking up teacher: %w", err)
	}
	if teacher == nil || !auth.CheckPassword(teacher.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, teacher)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, teacher *models.Teacher) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(teacher.ID, teacher.Email)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.sessions.Create(ctx, teacher.ID, refreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a
// fresh pair is issued. Tokens past their expiry are pruned on the way.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error looking up refresh token: %w", err)
	}
	if stored == nil {
		return nil, apperrors.ErrTokenNotFound
	}
	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	teacher, err := s.teachers.GetByID(ctx, stored.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("error looking up teacher: %w", err)
	}
	if teacher == nil {
		return nil, apperrors.ErrTeacherNotFound
	}

	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error revoking refresh token: %w", err)
	}

	// Rotation is the natural moment to prune tokens past their expiry;
	// a failed sweep never blocks the refresh itself.
	if err := s.sessions.DeleteExpired(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to prune expired refresh tokens")
	}

	return s.issueTokens(ctx, teacher)
}

// Logout revokes the session's refresh token.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// GetProfile returns the account of the authenticated teacher.
func (s *authServiceImpl) GetProfile(ctx context.Context, teacherID int64) (*dto.TeacherResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error looking up teacher: %w", err)
	}
	if teacher == nil {
		return nil, apperrors.ErrTeacherNotFound
	}
	return toTeacherResponse(teacher), nil
}

// UpdateProfile applies the profile edit form. The password only
// changes when a new one is provided, and it must match its
// confirmation.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, teacherID int64, req *dto.UpdateProfileRequest) (*dto.TeacherResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error looking up teacher: %w", err)
	}
	if teacher == nil {
		return nil, apperrors.ErrTeacherNotFound
	}

	payroll := strings.TrimSpace(req.PayrollNumber)
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validateProfileFields(ctx, payroll, fullName, req.Campus, email, req.CareerID); err != nil {
		return nil, err
	}

	if req.Password != "" || req.ConfirmPassword != "" {
		if req.Password != req.ConfirmPassword {
			return nil, apperrors.NewBadRequestError("passwords do not match, the password has not been changed")
		}
		if err := validatePassword(req.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		teacher.PasswordHash = hash
	}

	teacher.PayrollNumber = payroll
	teacher.FullName = fullName
	teacher.Campus = req.Campus
	teacher.Email = email
	teacher.CareerID = req.CareerID

	if err := s.teachers.Update(ctx, teacher); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teacherId", teacherID).Msg("Teacher profile updated")
	return toTeacherResponse(teacher), nil
}

// DeleteAccount removes the teacher row, which cascades to courses,
// attachments, reports and sessions, then removes the owned physical
// files best-effort.
func (s *authServiceImpl) DeleteAccount(ctx context.Context, teacherID int64) error {
	names, err := s.attachments.ListNamesByOwner(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("error listing owned attachments: %w", err)
	}

	if err := s.sessions.RevokeAllForTeacher(ctx, teacherID); err != nil {
		s.logger.Warn().Err(err).Int64("teacherId", teacherID).Msg("Failed to revoke sessions before account deletion")
	}

	if err := s.teachers.Delete(ctx, teacherID); err != nil {
		return err
	}

	// The rows are gone; leftover files are orphans worth logging but
	// not worth failing the deletion over.
	for _, name := range names {
		if err := s.storage.Delete(name); err != nil {
			s.logger.Error().Err(err).Str("name", name).Msg("Failed to remove stored file of deleted account")
		}
	}

	s.logger.Info().Int64("teacherId", teacherID).Int("files", len(names)).Msg("Teacher account deleted")
	return nil
}

// ListCareers returns the seeded career catalog for the registration
// form.
func (s *authServiceImpl) ListCareers(ctx context.Context) ([]dto.CareerResponse, error) {
	careers, err := s.careers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing careers: %w", err)
	}

	responses := make([]dto.CareerResponse, 0, len(careers))
	for _, c := range careers {
		responses = append(responses, dto.CareerResponse{ID: c.ID, Name: c.Name, Campus: c.Campus})
	}
	return responses, nil
}
