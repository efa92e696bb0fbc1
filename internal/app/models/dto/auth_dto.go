package dto

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	PayrollNumber   string `json:"payrollNumber" binding:"required"`
	FullName        string `json:"fullName" binding:"required"`
	Campus          string `json:"campus" binding:"required"`
	CareerID        int64  `json:"careerId" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token to rotate.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest carries the profile edit form fields. Password is
// only changed when provided.
type UpdateProfileRequest struct {
	PayrollNumber   string `json:"payrollNumber" binding:"required"`
	FullName        string `json:"fullName" binding:"required"`
	Campus          string `json:"campus" binding:"required"`
	CareerID        int64  `json:"careerId" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// TokenResponse is returned on successful login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// TeacherResponse is the public view of a teacher account.
type TeacherResponse struct {
	ID            int64  `json:"id"`
	PayrollNumber string `json:"payrollNumber"`
	FullName      string `json:"fullName"`
	Campus        string `json:"campus"`
	Email         string `json:"email"`
	CareerID      int64  `json:"careerId"`
}

// CareerResponse is a career entry for the registration form.
type CareerResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Campus string `json:"campus"`
}
