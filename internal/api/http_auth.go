package api

import (
	"biblioteca/internal/auth"
	"biblioteca/internal/entity"
	"biblioteca/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// mapAuthError translates service errors into the client-facing taxonomy.
func mapAuthError(err error) *APIError {
	var failed *service.FailedLoginError
	if errors.As(err, &failed) {
		apiErr := NewAPIError(ErrCodeInvalidCredentials, "invalid email or password")
		return apiErr.WithDetails(map[string]interface{}{
			"attempts_left": failed.AttemptsLeft,
			"locked":        failed.Locked,
		})
	}

	var policyErr *auth.PasswordPolicyError
	if errors.As(err, &policyErr) {
		return NewAPIError(ErrCodeWeakPassword, policyErr.Error())
	}

	switch {
	case errors.Is(err, service.ErrEmailExists):
		return NewAPIError(ErrCodeEmailExists, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return NewAPIError(ErrCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrAccountLocked):
		return NewAPIError(ErrCodeAccountLocked, "account is locked")
	case errors.Is(err, service.ErrAccountInactive):
		return NewAPIError(ErrCodeAccountInactive, "account is not activated")
	case errors.Is(err, service.ErrAccountNotFound):
		return NewAPIError(ErrCodeAccountNotFound, "account not found")
	case errors.Is(err, service.ErrAlreadyActive):
		return BadRequest("account is already active")
	case errors.Is(err, service.ErrInvalidCode):
		return NewAPIError(ErrCodeInvalidCode, "invalid or expired code")
	case errors.Is(err, service.ErrWrongPassword):
		return NewAPIError(ErrCodeInvalidCredentials, "current password incorrect")
	case errors.Is(err, service.ErrNoSecurityAnswer):
		return BadRequest("account has no security question configured")
	case errors.Is(err, service.ErrWrongAnswer):
		return NewAPIError(ErrCodeInvalidCode, "security answer incorrect")
	default:
		return nil
	}
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid registration payload"))
		return
	}

	kind := entity.AccountKindStudent
	if strings.TrimSpace(req.RegistrationNo) == "" {
		kind = entity.AccountKindStaff
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	account, err := h.authService.Register(ctx, &req, kind)
	if err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("failed to register account")
		respondError(c, InternalError("failed to register account"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account": service.MakeAccountSummary(account),
		"message": "check your email for the activation code",
	})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid login payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("login failed")
		respondError(c, InternalError("failed to process login"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) Activate(c *gin.Context) {
	var req entity.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid activation payload"))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		respondError(c, MissingField("code"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	account, err := h.authService.Activate(ctx, req.Email, req.Code)
	if err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("failed to activate account")
		respondError(c, InternalError("failed to activate account"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": service.MakeAccountSummary(account)})
}

func (h *HTTPHandler) RecoverPassword(c *gin.Context) {
	var req entity.RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid recovery payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.RecoverPassword(ctx, req.Email); err != nil {
		// Whether the email exists is not revealed to the caller.
		if !errors.Is(err, service.ErrAccountNotFound) {
			logrus.WithError(err).Error("failed to process password recovery")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the email is registered, a recovery code has been sent"})
}

func (h *HTTPHandler) ResetPassword(c *gin.Context) {
	var req entity.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid reset payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.authService.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("failed to reset password")
		respondError(c, InternalError("failed to reset password"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *HTTPHandler) ResetPasswordQuestion(c *gin.Context) {
	var req entity.ResetPasswordQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid reset payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.authService.ResetPasswordWithAnswer(ctx, req.Email, req.Answer, req.NewPassword); err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("failed to reset password via security question")
		respondError(c, InternalError("failed to reset password"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	account, err := h.repo.GetAccountByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeAccountNotFound, "account not found"))
			return
		}
		logrus.WithError(err).Error("failed to load account")
		respondError(c, InternalError("failed to load account"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": service.MakeAccountSummary(account)})
}

func (h *HTTPHandler) UpdateMe(c *gin.Context) {
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	var req entity.AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid profile payload"))
		return
	}

	updates := entity.AccountUpdates{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 3 {
			respondError(c, BadRequest("name must have at least 3 characters"))
			return
		}
		updates.Name = &name
	}
	if req.SecurityQuestion != nil {
		question := strings.TrimSpace(*req.SecurityQuestion)
		updates.SecurityQuestion = &question
	}
	if req.SecurityAnswer != nil {
		answerHash, err := auth.HashPassword(strings.ToLower(strings.TrimSpace(*req.SecurityAnswer)))
		if err != nil {
			logrus.WithError(err).Error("failed to hash security answer")
			respondError(c, InternalError("failed to update profile"))
			return
		}
		updates.SecurityAnswerHash = &answerHash
	}
	if updates.IsEmpty() {
		respondError(c, BadRequest("no fields to update"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateAccount(ctx, current.ID, updates); err != nil {
		logrus.WithError(err).Error("failed to update profile")
		respondError(c, InternalError("failed to update profile"))
		return
	}
	h.writeAudit(ctx, entity.AuditActionProfileUpdate, "profile updated", &current.ID)

	account, err := h.repo.GetAccountByID(ctx, current.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to reload account")
		respondError(c, InternalError("failed to load account"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": service.MakeAccountSummary(account)})
}

func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	var req entity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid password payload"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ChangePassword(ctx, current.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if apiErr := mapAuthError(err); apiErr != nil {
			respondError(c, apiErr)
			return
		}
		logrus.WithError(err).Error("failed to change password")
		respondError(c, InternalError("failed to change password"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// writeAudit is the handler-side audit helper for operations that do not
// go through a service.
func (h *HTTPHandler) writeAudit(ctx context.Context, action, details string, accountID *uint) {
	entry := &entity.DbAuditLog{Action: action, Details: details, AccountID: accountID}
	if err := h.repo.CreateAuditLog(ctx, entry); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}
