package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestJWTService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	accessToken, refreshToken, expiresIn, err := svc.GenerateTokenPair(42, "teacher@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if refreshToken == "" {
		t.Error("expected a refresh token")
	}
	if expiresIn != int(time.Hour.Seconds()) {
		t.Errorf("expiresIn = %d, want %d", expiresIn, int(time.Hour.Seconds()))
	}

	claims, err := svc.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TeacherID != 42 {
		t.Errorf("TeacherID = %d, want 42", claims.TeacherID)
	}
	if claims.Email != "teacher@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	accessToken, _, _, err := svc.GenerateTokenPair(1, "t@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := svc.ValidateToken(accessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	accessToken, _, _, err := svc.GenerateTokenPair(1, "t@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	other := NewJWTService(JWTConfig{
		SecretKey:       "different-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	if _, err := other.ValidateToken(accessToken); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractBearerToken: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q", token)
	}

	for _, header := range []string{"", "abc.def.ghi", "Basic xyz", "bearer abc"} {
		if _, err := ExtractBearerToken(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}
