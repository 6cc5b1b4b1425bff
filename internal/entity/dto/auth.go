package dto

import "time"

// RegisterRequest is the public registration payload. Password strength is
// checked separately so the error can name the missing character class.
type RegisterRequest struct {
	Name             string `json:"name" binding:"required,min=3"`
	Email            string `json:"email" binding:"required,email"`
	RegistrationNo   string `json:"registration_no" binding:"omitempty,min=5"`
	Password         string `json:"password" binding:"required,min=8"`
	SecurityQuestion string `json:"security_question" binding:"omitempty,min=5"`
	SecurityAnswer   string `json:"security_answer" binding:"omitempty,min=2"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Account      AccountSummary `json:"account"`
	LastLogin    string         `json:"last_login"`
}

// ActivateRequest activates an account with the emailed code.
type ActivateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// RecoverPasswordRequest asks for a recovery code by email.
type RecoverPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest resets the password with a recovery code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPasswordQuestionRequest resets the password with the security answer.
type ResetPasswordQuestionRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePasswordRequest changes the password of the authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}
