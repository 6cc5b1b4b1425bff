package api

import (
	"biblioteca/internal/config"
	"biblioteca/internal/entity"
	"biblioteca/internal/mail"
	"biblioteca/internal/model/sql"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// historyMailer records the loans handed to SendLoanHistory.
type historyMailer struct {
	mail.Mailer
	lastLoans []entity.DbLoan
}

func (m *historyMailer) SendLoanHistory(account *entity.DbAccount, loans []entity.DbLoan) error {
	m.lastLoans = loans
	return nil
}

func newLoanTestHandler(t *testing.T, mailer mail.Mailer) (*HTTPHandler, *sql.GormRepository) {
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

	handler, err := NewHTTPHandler(cfg, repo, nil, mailer)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler, repo
}

func seedLoan(t *testing.T, repo *sql.GormRepository, accountID uint, title string, returned bool) *entity.DbLoan {
	t.Helper()
	ctx := context.Background()
	book := &entity.DbBook{Title: title, Author: "Test Author", Quantity: 1}
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	now := time.Now().UTC()
	loan := &entity.DbLoan{
		AccountID: accountID,
		BookID:    book.ID,
		LoanedAt:  now,
		DueDate:   now.AddDate(0, 0, 14),
	}
	if err := repo.CreateLoan(ctx, loan, 10); err != nil {
		t.Fatalf("failed to seed loan: %v", err)
	}
	if returned {
		if _, err := repo.ReturnLoan(ctx, loan.ID); err != nil {
			t.Fatalf("failed to return seeded loan: %v", err)
		}
	}
	return loan
}

func newLoanTestRouter(handler *HTTPHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api")
	group.Use(handler.AuthMiddleware())
	group.POST("/loans", handler.CreateLoan)
	return r
}

func TestCreateLoanMissingBookReturns404(t *testing.T) {
	handler, repo := newLoanTestHandler(t, &historyMailer{})
	r := newLoanTestRouter(handler)
	reader := seedTestAccount(t, repo, "missingbook@example.com", entity.AccessLevelUser, nil)

	token, _, err := handler.authManager.GenerateToken(reader.ID, reader.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/loans", strings.NewReader(`{"book_id": 9999}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing book, got %d: %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if apiErr.Code != ErrCodeBookNotFound {
		t.Fatalf("expected %s, got %s", ErrCodeBookNotFound, apiErr.Code)
	}
}

func TestCreateLoanLimitDetailsReportActiveCount(t *testing.T) {
	handler, repo := newLoanTestHandler(t, &historyMailer{})
	r := newLoanTestRouter(handler)
	reader := seedTestAccount(t, repo, "atlimit@example.com", entity.AccessLevelUser, nil)

	for i := 0; i < 3; i++ {
		seedLoan(t, repo, reader.ID, "Vol", false)
	}
	extra := &entity.DbBook{Title: "One More", Author: "Test Author", Quantity: 1}
	if err := repo.CreateBook(context.Background(), extra); err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}

	token, _, err := handler.authManager.GenerateToken(reader.ID, reader.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	body := `{"book_id": ` + strconv.FormatUint(uint64(extra.ID), 10) + `}`
	req := httptest.NewRequest(http.MethodPost, "/api/loans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 at loan limit, got %d: %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if apiErr.Code != ErrCodeLoanLimit {
		t.Fatalf("expected %s, got %s", ErrCodeLoanLimit, apiErr.Code)
	}
	if got, ok := apiErr.Details["limit"].(float64); !ok || got != 3 {
		t.Fatalf("expected limit 3 in details, got %v", apiErr.Details["limit"])
	}
	if got, ok := apiErr.Details["active"].(float64); !ok || got != 3 {
		t.Fatalf("expected active 3 in details, got %v", apiErr.Details["active"])
	}
}

func TestSendLoanHistoryEmailsOnlyActiveLoans(t *testing.T) {
	mailer := &historyMailer{}
	handler, repo := newLoanTestHandler(t, mailer)
	admin := seedTestAccount(t, repo, "historyadmin@example.com", entity.AccessLevelAdmin, nil)
	reader := seedTestAccount(t, repo, "reader@example.com", entity.AccessLevelUser, nil)

	seedLoan(t, repo, reader.ID, "Already Returned", true)
	active := seedLoan(t, repo, reader.ID, "Still Out", false)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api")
	group.Use(handler.AuthMiddleware(), handler.RequireLevel(entity.AccessLevelAdmin))
	group.POST("/loans/:id/email", handler.SendLoanHistory)

	token, _, err := handler.authManager.GenerateToken(admin.ID, admin.AccessLevel)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/loans/"+strconv.FormatUint(uint64(reader.ID), 10)+"/email", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(mailer.lastLoans) != 1 {
		t.Fatalf("expected 1 active loan in email, got %d", len(mailer.lastLoans))
	}
	if mailer.lastLoans[0].ID != active.ID {
		t.Fatalf("expected active loan %d in email, got %d", active.ID, mailer.lastLoans[0].ID)
	}
}
