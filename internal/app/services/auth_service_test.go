package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/app/models/dto"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
	pkgauth "github.com/rlopezj/catedra/internal/pkg/auth"
)

// --- fakes ---

type fakeTeacherStore struct {
	teachers map[int64]*models.Teacher
	nextID   int64
}

func newFakeTeacherStore() *fakeTeacherStore {
	return &fakeTeacherStore{teachers: map[int64]*models.Teacher{}, nextID: 1}
}

func (f *fakeTeacherStore) Create(_ context.Context, teacher *models.Teacher) (int64, error) {
	for _, existing := range f.teachers {
		if existing.Email == teacher.Email {
			return 0, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "the email is already registered").WithField("email")
		}
		if existing.PayrollNumber == teacher.PayrollNumber {
			return 0, apperrors.NewCustomError(apperrors.ErrPayrollNumberExists, "the payroll number is already registered").WithField("payrollNumber")
		}
	}
	stored := *teacher
	stored.ID = f.nextID
	f.nextID++
	f.teachers[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeTeacherStore) GetByEmail(_ context.Context, email string) (*models.Teacher, error) {
	for _, t := range f.teachers {
		if t.Email == email {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTeacherStore) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeacherStore) Update(_ context.Context, teacher *models.Teacher) error {
	if _, ok := f.teachers[teacher.ID]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	stored := *teacher
	f.teachers[teacher.ID] = &stored
	return nil
}

func (f *fakeTeacherStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.teachers[id]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	delete(f.teachers, id)
	return nil
}

type fakeCareerStore struct {
	careers map[int64]*models.Career
}

func newFakeCareerStore() *fakeCareerStore {
	return &fakeCareerStore{careers: map[int64]*models.Career{
		1: {ID: 1, Name: "Lic. en Informática", Campus: "Ixtepec"},
	}}
}

func (f *fakeCareerStore) GetByID(_ context.Context, id int64) (*models.Career, error) {
	c, ok := f.careers[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCareerStore) GetAll(context.Context) ([]models.Career, error) {
	var all []models.Career
	for _, c := range f.careers {
		all = append(all, *c)
	}
	return all, nil
}

type fakeSessionStore struct {
	tokens map[string]*models.RefreshToken
	nextID int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{tokens: map[string]*models.RefreshToken{}, nextID: 1}
}

func (f *fakeSessionStore) Create(_ context.Context, teacherID int64, token string, expiresAt time.Time) error {
	f.tokens[token] = &models.RefreshToken{
		ID:        f.nextID,
		TeacherID: teacherID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.nextID++
	return nil
}

func (f *fakeSessionStore) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, token string) error {
	if t, ok := f.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

func (f *fakeSessionStore) RevokeAllForTeacher(_ context.Context, teacherID int64) error {
	for _, t := range f.tokens {
		if t.TeacherID == teacherID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteExpired(context.Context) error {
	for token, t := range f.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(f.tokens, token)
		}
	}
	return nil
}

type fakeFileIndex struct {
	names []string
}

func (f *fakeFileIndex) ListNamesByOwner(context.Context, int64) ([]string, error) {
	return f.names, nil
}

type fakeFileRemover struct {
	removed []string
}

func (f *fakeFileRemover) Delete(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

// --- fixture ---

type authFixture struct {
	service  AuthService
	teachers *fakeTeacherStore
	sessions *fakeSessionStore
	files    *fakeFileIndex
	remover  *fakeFileRemover
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})

	fx := &authFixture{
		teachers: newFakeTeacherStore(),
		sessions: newFakeSessionStore(),
		files:    &fakeFileIndex{},
		remover:  &fakeFileRemover{},
	}
	fx.service = NewAuthService(fx.teachers, newFakeCareerStore(), fx.sessions, fx.files, fx.remover, jwtService, zerolog.Nop())
	return fx
}

func validRegistration() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		PayrollNumber:   "NOM123",
		FullName:        "Rosa López",
		Campus:          "Ixtepec",
		CareerID:        1,
		Email:           "rosa@example.com",
		Password:        "secret1234",
		ConfirmPassword: "secret1234",
	}
}

// --- tests ---

func TestRegisterCreatesAccount(t *testing.T) {
	fx := newAuthFixture(t)

	teacher, err := fx.service.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if teacher.ID == 0 {
		t.Error("expected an assigned ID")
	}
	if teacher.Email != "rosa@example.com" {
		t.Errorf("Email = %q", teacher.Email)
	}

	stored := fx.teachers.teachers[teacher.ID]
	if stored.PasswordHash == "secret1234" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	fx := newAuthFixture(t)

	req := validRegistration()
	req.Email = "Rosa@Example.COM"
	teacher, err := fx.service.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if teacher.Email != "rosa@example.com" {
		t.Errorf("Email = %q, want lowercased", teacher.Email)
	}
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	fx := newAuthFixture(t)

	req := validRegistration()
	req.ConfirmPassword = "different1"
	if _, err := fx.service.Register(context.Background(), req); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	fx := newAuthFixture(t)

	for _, password := range []string{"short1", "onlyletters", "12345678"} {
		req := validRegistration()
		req.Password = password
		req.ConfirmPassword = password
		if _, err := fx.service.Register(context.Background(), req); !errors.Is(err, apperrors.ErrBadRequest) {
			t.Errorf("password %q: expected ErrBadRequest, got %v", password, err)
		}
	}
}

func TestRegisterRejectsUnknownCareer(t *testing.T) {
	fx := newAuthFixture(t)

	req := validRegistration()
	req.CareerID = 99
	if _, err := fx.service.Register(context.Background(), req); !errors.Is(err, apperrors.ErrCareerNotFound) {
		t.Fatalf("expected ErrCareerNotFound, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	req := validRegistration()
	req.PayrollNumber = "NOM999"
	_, err := fx.service.Register(ctx, req)
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
	if apperrors.FieldOf(err) != "email" {
		t.Errorf("expected the error to name the email field, got %q", apperrors.FieldOf(err))
	}
}

func TestRegisterRejectsDuplicatePayrollNumber(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	req := validRegistration()
	req.Email = "other@example.com"
	_, err := fx.service.Register(ctx, req)
	if !errors.Is(err, apperrors.ErrPayrollNumberExists) {
		t.Fatalf("expected ErrPayrollNumberExists, got %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tokens, err := fx.service.Login(ctx, &dto.LoginRequest{Email: "rosa@example.com", Password: "secret1234"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if _, err := fx.sessions.GetByToken(ctx, tokens.RefreshToken); err != nil {
		t.Errorf("refresh token not stored: %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, errWrongPassword := fx.service.Login(ctx, &dto.LoginRequest{Email: "rosa@example.com", Password: "bad-password"})
	_, errUnknownEmail := fx.service.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "secret1234"})

	if !errors.Is(errWrongPassword, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, apperrors.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", errUnknownEmail)
	}
}

func TestRefreshTokenRotates(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokens, err := fx.service.Login(ctx, &dto.LoginRequest{Email: "rosa@example.com", Password: "secret1234"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := fx.service.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("expected a new refresh token")
	}

	// The old token is revoked and cannot be used again.
	if _, err := fx.service.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on reuse, got %v", err)
	}
}

func TestRefreshTokenUnknown(t *testing.T) {
	fx := newAuthFixture(t)

	if _, err := fx.service.RefreshToken(context.Background(), "no-such-token"); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRefreshTokenExpired(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := fx.sessions.Create(ctx, 1, "stale-token", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := fx.service.RefreshToken(ctx, "stale-token"); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshTokenPrunesExpiredSessions(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokens, err := fx.service.Login(ctx, &dto.LoginRequest{Email: "rosa@example.com", Password: "secret1234"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := fx.sessions.Create(ctx, 1, "stale-token", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := fx.service.RefreshToken(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}

	if _, ok := fx.sessions.tokens["stale-token"]; ok {
		t.Error("expired session not pruned during rotation")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tokens, err := fx.service.Login(ctx, &dto.LoginRequest{Email: "rosa@example.com", Password: "secret1234"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := fx.service.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := fx.service.RefreshToken(ctx, tokens.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestUpdateProfileKeepsPasswordWhenBlank(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	originalHash := fx.teachers.teachers[registered.ID].PasswordHash

	_, err = fx.service.UpdateProfile(ctx, registered.ID, &dto.UpdateProfileRequest{
		PayrollNumber: "NOM123",
		FullName:      "Rosa López de la Cruz",
		Campus:        "Ixtepec",
		CareerID:      1,
		Email:         "rosa@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	updated := fx.teachers.teachers[registered.ID]
	if updated.FullName != "Rosa López de la Cruz" {
		t.Errorf("FullName = %q", updated.FullName)
	}
	if updated.PasswordHash != originalHash {
		t.Error("password changed even though none was provided")
	}
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	originalHash := fx.teachers.teachers[registered.ID].PasswordHash

	_, err = fx.service.UpdateProfile(ctx, registered.ID, &dto.UpdateProfileRequest{
		PayrollNumber:   "NOM123",
		FullName:        "Rosa López",
		Campus:          "Ixtepec",
		CareerID:        1,
		Email:           "rosa@example.com",
		Password:        "newsecret99",
		ConfirmPassword: "newsecret99",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if fx.teachers.teachers[registered.ID].PasswordHash == originalHash {
		t.Error("password hash unchanged after update")
	}
}

func TestDeleteAccountRemovesRowsAndFiles(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	fx.files.names = []string{"Algebra_2024A_unit1.pdf", "Algebra_2024A_unit2.pdf"}

	if err := fx.service.DeleteAccount(ctx, registered.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	if _, ok := fx.teachers.teachers[registered.ID]; ok {
		t.Error("teacher row still present")
	}
	if len(fx.remover.removed) != 2 {
		t.Errorf("expected 2 removed files, got %d", len(fx.remover.removed))
	}
}

func TestGetProfileUnknownTeacher(t *testing.T) {
	fx := newAuthFixture(t)

	if _, err := fx.service.GetProfile(context.Background(), 404); !errors.Is(err, apperrors.ErrTeacherNotFound) {
		t.Fatalf("expected ErrTeacherNotFound, got %v", err)
	}
}
