package service

import (
	"biblioteca/internal/auth"
	"biblioteca/internal/entity"
	"biblioteca/internal/mail"
	"biblioteca/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Errors the handlers map onto the HTTP taxonomy.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountInactive    = errors.New("account not activated")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAlreadyActive      = errors.New("account already active")
	ErrInvalidCode        = errors.New("invalid code")
	ErrWrongPassword      = errors.New("current password incorrect")
	ErrNoSecurityAnswer   = errors.New("account has no security question")
	ErrWrongAnswer        = errors.New("security answer incorrect")
)

// FailedLoginError reports a rejected password attempt together with the
// lockout state it produced.
type FailedLoginError struct {
	AttemptsLeft int
	Locked       bool
}

func (e *FailedLoginError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *FailedLoginError) Unwrap() error {
	return ErrInvalidCredentials
}

// AuthService owns the account lifecycle: registration, activation, the
// login-attempt lockout state machine, and password recovery.
type AuthService struct {
	repo        model.Repository
	mailer      mail.Mailer
	tokens      *auth.Manager
	maxAttempts int
}

// NewAuthService 创建认证服务
func NewAuthService(repo model.Repository, mailer mail.Mailer, tokens *auth.Manager, maxAttempts int) *AuthService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &AuthService{
		repo:        repo,
		mailer:      mailer,
		tokens:      tokens,
		maxAttempts: maxAttempts,
	}
}

// audit appends a log entry. Audit writes are best-effort; a failure is
// logged but never fails the calling operation.
func (s *AuthService) audit(ctx context.Context, action, details string, accountID *uint) {
	entry := &entity.DbAuditLog{Action: action, Details: details, AccountID: accountID}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}

// Register creates an INACTIVE account and emails its activation code.
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest, kind string) (*entity.DbAccount, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := auth.GenerateCode(4)
	if err != nil {
		return nil, err
	}

	account := &entity.DbAccount{
		Kind:             kind,
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		RegistrationNo:   strings.TrimSpace(req.RegistrationNo),
		PasswordHash:     hash,
		AccessLevel:      entity.AccessLevelUser,
		Status:           entity.AccountStatusInactive,
		ActivationCode:   &code,
		SecurityQuestion: strings.TrimSpace(req.SecurityQuestion),
	}

	if answer := strings.TrimSpace(req.SecurityAnswer); answer != "" {
		answerHash, err := auth.HashPassword(strings.ToLower(answer))
		if err != nil {
			return nil, err
		}
		account.SecurityAnswerHash = answerHash
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.mailer.SendActivationCode(account.Name, account.Email, code); err != nil {
		logrus.WithError(err).WithField("email", account.Email).Warn("failed to send activation email")
	}

	s.audit(ctx, entity.AuditActionRegister, fmt.Sprintf("account registered: %s", account.Email), &account.ID)
	return account, nil
}

// Login runs the lockout state machine. A wrong password increments the
// failure counter; reaching the threshold flips the account into LOCKED,
// where even the correct password is rejected until an unlock path runs.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Locked {
		return nil, ErrAccountLocked
	}
	if account.Status != entity.AccountStatusActive {
		return nil, ErrAccountInactive
	}

	if err := auth.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		return nil, s.recordFailure(ctx, account)
	}

	lastLogin := "This is your first login"
	if account.LastLoginAt != nil {
		lastLogin = fmt.Sprintf("Last login at %s", account.LastLoginAt.UTC().Format(time.RFC3339))
	}

	now := time.Now().UTC()
	zero := 0
	if err := s.repo.UpdateAccount(ctx, account.ID, entity.AccountUpdates{
		FailedAttempts: &zero,
		LastLoginAt:    &now,
	}); err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditActionLogin, fmt.Sprintf("login succeeded for %s", account.Email), &account.ID)

	token, refresh, expiresAt, err := s.IssueTokens(account)
	if err != nil {
		return nil, err
	}

	account.FailedAttempts = 0
	account.LastLoginAt = &now

	return &entity.LoginResponse{
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		Account:      MakeAccountSummary(account),
		LastLogin:    lastLogin,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, account *entity.DbAccount) error {
	attempts := account.FailedAttempts + 1
	locked := attempts >= s.maxAttempts

	updates := entity.AccountUpdates{FailedAttempts: &attempts}
	if locked {
		updates.Locked = &locked
	}
	if err := s.repo.UpdateAccount(ctx, account.ID, updates); err != nil {
		return err
	}

	s.audit(ctx, entity.AuditActionLoginFailed,
		fmt.Sprintf("login attempt %d failed for %s", attempts, account.Email), &account.ID)
	if locked {
		s.audit(ctx, entity.AuditActionLocked,
			fmt.Sprintf("account locked after %d failed attempts: %s", attempts, account.Email), &account.ID)
	}

	remaining := s.maxAttempts - attempts
	if remaining < 0 {
		remaining = 0
	}
	return &FailedLoginError{AttemptsLeft: remaining, Locked: locked}
}

// IssueTokens builds the access/refresh token pair for an account.
func (s *AuthService) IssueTokens(account *entity.DbAccount) (token, refresh string, expiresAt time.Time, err error) {
	token, expiresAt, err = s.tokens.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		return "", "", time.Time{}, err
	}
	refresh, _, err = s.tokens.GenerateRefreshToken(account.ID, account.AccessLevel)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, refresh, expiresAt, nil
}

// Activate flips an INACTIVE account to ACTIVE when the emailed code
// matches, consuming the code.
func (s *AuthService) Activate(ctx context.Context, email, code string) (*entity.DbAccount, error) {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if account.Status == entity.AccountStatusActive {
		return nil, ErrAlreadyActive
	}
	if account.ActivationCode == nil || *account.ActivationCode != strings.ToUpper(strings.TrimSpace(code)) {
		return nil, ErrInvalidCode
	}

	active := entity.AccountStatusActive
	var noCode *string
	if err := s.repo.UpdateAccount(ctx, account.ID, entity.AccountUpdates{
		Status:         &active,
		ActivationCode: &noCode,
	}); err != nil {
		return nil, err
	}
	account.Status = active
	account.ActivationCode = nil

	s.audit(ctx, entity.AuditActionActivate, fmt.Sprintf("account activated: %s", account.Email), &account.ID)
	return account, nil
}

// RecoverPassword stores a fresh recovery code on the account and emails
// it. The activation-code column doubles as the recovery-code slot.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	code, err := auth.GenerateCode(4)
	if err != nil {
		return err
	}
	codePtr := &code
	if err := s.repo.UpdateAccount(ctx, account.ID, entity.AccountUpdates{ActivationCode: &codePtr}); err != nil {
		return err
	}

	if err := s.mailer.SendRecoveryCode(account.Name, account.Email, code); err != nil {
		logrus.WithError(err).WithField("email", account.Email).Warn("failed to send recovery email")
	}

	s.audit(ctx, entity.AuditActionRecoverySent, fmt.Sprintf("password recovery requested for %s", account.Email), &account.ID)
	return nil
}

// ResetPassword sets a new password when the recovery code matches. The
// reset also clears the lockout so a recovered account can log in again.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (*entity.DbAccount, error) {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if account.ActivationCode == nil || *account.ActivationCode != strings.ToUpper(strings.TrimSpace(code)) {
		return nil, ErrInvalidCode
	}

	if err := s.setPassword(ctx, account, newPassword, true); err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditActionPasswordReset, fmt.Sprintf("password reset for %s", account.Email), &account.ID)
	return account, nil
}

// ResetPasswordWithAnswer resets the password via the security question.
func (s *AuthService) ResetPasswordWithAnswer(ctx context.Context, email, answer, newPassword string) (*entity.DbAccount, error) {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.SecurityAnswerHash == "" {
		return nil, ErrNoSecurityAnswer
	}
	if err := auth.VerifyPassword(account.SecurityAnswerHash, strings.ToLower(strings.TrimSpace(answer))); err != nil {
		return nil, ErrWrongAnswer
	}

	if err := s.setPassword(ctx, account, newPassword, true); err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditActionPasswordReset,
		fmt.Sprintf("password reset via security question for %s", account.Email), &account.ID)
	return account, nil
}

// ChangePassword changes the password of an authenticated account after
// checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uint, current, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if err := auth.VerifyPassword(account.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}

	if err := s.setPassword(ctx, account, newPassword, true); err != nil {
		return err
	}
	s.audit(ctx, entity.AuditActionPasswordChange, fmt.Sprintf("password changed for %s", account.Email), &account.ID)
	return nil
}

// setPassword stores a new hash; clearLock also resets the lockout state
// and consumes any outstanding code.
func (s *AuthService) setPassword(ctx context.Context, account *entity.DbAccount, newPassword string, clearLock bool) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	updates := entity.AccountUpdates{PasswordHash: &hash}
	if clearLock {
		unlocked := false
		zero := 0
		var noCode *string
		updates.Locked = &unlocked
		updates.FailedAttempts = &zero
		updates.ActivationCode = &noCode
	}
	return s.repo.UpdateAccount(ctx, account.ID, updates)
}

// Unlock is the administrative exit from the LOCKED state.
func (s *AuthService) Unlock(ctx context.Context, accountID uint, byEmail string) error {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	unlocked := false
	zero := 0
	if err := s.repo.UpdateAccount(ctx, account.ID, entity.AccountUpdates{
		Locked:         &unlocked,
		FailedAttempts: &zero,
	}); err != nil {
		return err
	}

	s.audit(ctx, entity.AuditActionUnlocked,
		fmt.Sprintf("account %s unlocked by %s", account.Email, byEmail), &account.ID)
	return nil
}

// MakeAccountSummary converts a DB account to the client-facing shape.
func MakeAccountSummary(account *entity.DbAccount) entity.AccountSummary {
	if account == nil {
		return entity.AccountSummary{}
	}
	return entity.AccountSummary{
		ID:               account.ID,
		Kind:             account.Kind,
		Name:             account.Name,
		Email:            account.Email,
		RegistrationNo:   account.RegistrationNo,
		AccessLevel:      account.AccessLevel,
		Status:           account.Status,
		Locked:           account.Locked,
		SecurityQuestion: account.SecurityQuestion,
		LastLoginAt:      account.LastLoginAt,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}
}
