package api

import (
	"biblioteca/internal/auth"
	"biblioteca/internal/config"
	"biblioteca/internal/entity"
	"biblioteca/internal/mail"
	"biblioteca/internal/model/sql"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *sql.GormRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&entity.DbAccount{}, &entity.DbBook{}, &entity.DbLoan{}, &entity.DbAuditLog{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	repo := sql.NewGormRepository(db)

	cfg := config.Config{
		JWTSecret:             "test-secret",
		JWTIssuer:             "test",
		JWTExpirationMinutes:  60,
		JWTRefreshExpiryHours: 24,
		LoanLimit:             3,
		MaxLoginAttempts:      3,
		LoanDurationDays:      14,
		StorageLocalDir:       t.TempDir(),
	}

	handler, err := NewHTTPHandler(cfg, repo, nil, mail.NewMailer(cfg))
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler, repo
}

func newTestRouter(handler *HTTPHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	protected := r.Group("/api")
	protected.Use(handler.AuthMiddleware())
	protected.GET("/accounts/me", handler.Me)

	admin := protected.Group("")
	admin.Use(handler.RequireLevel(entity.AccessLevelAdmin))
	admin.GET("/audit-logs", handler.ListAuditLogs)

	return r
}

func seedTestAccount(t *testing.T, repo *sql.GormRepository, email string, level int, mutate func(*entity.DbAccount)) *entity.DbAccount {
	t.Helper()
	account := &entity.DbAccount{
		Kind:         entity.AccountKindStaff,
		Name:         "Middleware Tester",
		Email:        email,
		PasswordHash: "not-a-real-hash",
		AccessLevel:  level,
		Status:       entity.AccountStatusActive,
	}
	if mutate != nil {
		mutate(account)
	}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	handler, _ := newTestHandler(t)
	r := newTestRouter(handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	handler, _ := newTestHandler(t)
	r := newTestRouter(handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "ok@example.com", entity.AccessLevelUser, nil)

	token, _, err := handler.authManager.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareBlocksLockedAccount(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "locked@example.com", entity.AccessLevelUser, func(a *entity.DbAccount) {
		a.Locked = true
	})

	token, _, err := handler.authManager.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for locked account, got %d", w.Code)
	}
}

func TestAuthMiddlewareBlocksInactiveAccount(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "inactive@example.com", entity.AccessLevelUser, func(a *entity.DbAccount) {
		a.Status = entity.AccountStatusInactive
	})

	token, _, err := handler.authManager.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for inactive account, got %d", w.Code)
	}
}

func TestRequireLevelBlocksLowerLevels(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "user@example.com", entity.AccessLevelUser, nil)

	token, _, err := handler.authManager.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for level 0 on admin route, got %d", w.Code)
	}
}

func TestRequireLevelAllowsAdmin(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "admin@example.com", entity.AccessLevelAdmin, nil)

	token, _, err := handler.authManager.GenerateToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExpiredTokenRefreshedViaHeader(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "refresh@example.com", entity.AccessLevelUser, nil)

	expired := signExpiredToken(t, "test-secret", account.ID, account.AccessLevel)
	refresh, _, err := handler.authManager.GenerateRefreshToken(account.ID, account.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.Header.Set(refreshTokenHeader, refresh)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after silent refresh, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(newTokenHeader) == "" {
		t.Fatal("expected new access token header")
	}
	if w.Header().Get(newRefreshTokenHeader) == "" {
		t.Fatal("expected new refresh token header")
	}
}

func TestExpiredTokenWithoutRefreshFails(t *testing.T) {
	handler, repo := newTestHandler(t)
	r := newTestRouter(handler)
	account := seedTestAccount(t, repo, "stale@example.com", entity.AccessLevelUser, nil)

	expired := signExpiredToken(t, "test-secret", account.ID, account.AccessLevel)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token without refresh, got %d", w.Code)
	}
}

func signExpiredToken(t *testing.T, secret string, accountID uint, level int) string {
	t.Helper()
	past := time.Now().Add(-2 * time.Hour)
	claims := auth.Claims{
		AccountID:   accountID,
		AccessLevel: level,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}
	return token
}
