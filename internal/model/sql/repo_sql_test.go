package sql

import (
	"biblioteca/internal/entity"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// SQLite allows one writer; a single connection keeps concurrent
	// transactions from tripping over lock upgrades.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entity.DbAccount{}, &entity.DbBook{}, &entity.DbLoan{}, &entity.DbAuditLog{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return NewGormRepository(db)
}

func seedAccount(t *testing.T, repo *GormRepository, email string) *entity.DbAccount {
	t.Helper()
	account := &entity.DbAccount{
		Kind:         entity.AccountKindStudent,
		Name:         "Seed Reader",
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Status:       entity.AccountStatusActive,
	}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}

func seedBook(t *testing.T, repo *GormRepository, title string, quantity int) *entity.DbBook {
	t.Helper()
	book := &entity.DbBook{Title: title, Author: "Seed Author", Quantity: quantity}
	if err := repo.CreateBook(context.Background(), book); err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return book
}

func newLoan(accountID, bookID uint) *entity.DbLoan {
	now := time.Now().UTC()
	return &entity.DbLoan{
		AccountID: accountID,
		BookID:    bookID,
		LoanedAt:  now,
		DueDate:   now.AddDate(0, 0, 14),
	}
}

func TestGetAccountByEmailIgnoresCase(t *testing.T) {
	repo := newTestRepo(t)
	seedAccount(t, repo, "mixed@example.com")

	account, err := repo.GetAccountByEmail(context.Background(), "MIXED@Example.COM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Email != "mixed@example.com" {
		t.Fatalf("unexpected email %q", account.Email)
	}
}

func TestSoftDeletedAccountIsHidden(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "gone@example.com")

	if err := repo.SoftDeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}

	if _, err := repo.GetAccountByEmail(ctx, "gone@example.com"); err == nil {
		t.Fatal("expected deleted account to be hidden from email lookup")
	}
	if _, err := repo.GetAccountByID(ctx, account.ID); err == nil {
		t.Fatal("expected deleted account to be hidden from id lookup")
	}

	// The row itself survives with the lock and inactive flags set.
	dump, err := repo.DumpAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error dumping: %v", err)
	}
	if len(dump.Accounts) != 1 {
		t.Fatalf("expected soft-deleted row in dump, got %d rows", len(dump.Accounts))
	}
	row := dump.Accounts[0]
	if !row.Deleted || !row.Locked || row.Status != entity.AccountStatusInactive {
		t.Fatalf("unexpected soft-delete state: %+v", row)
	}
}

func TestCreateLoanDecrementsQuantity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "loan@example.com")
	book := seedBook(t, repo, "Grande Sertão", 2)

	if err := repo.CreateLoan(ctx, newLoan(account.ID, book.ID), 3); err != nil {
		t.Fatalf("unexpected error creating loan: %v", err)
	}

	reloaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("unexpected error loading book: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", reloaded.Quantity)
	}
}

func TestCreateLoanFailsWhenOutOfStock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := seedAccount(t, repo, "first@example.com")
	second := seedAccount(t, repo, "second@example.com")
	book := seedBook(t, repo, "Memórias Póstumas", 1)

	if err := repo.CreateLoan(ctx, newLoan(first.ID, book.ID), 3); err != nil {
		t.Fatalf("unexpected error creating first loan: %v", err)
	}

	err := repo.CreateLoan(ctx, newLoan(second.ID, book.ID), 3)
	if err != entity.ErrBookUnavailable {
		t.Fatalf("expected ErrBookUnavailable, got %v", err)
	}

	// The failed attempt must not leave a loan row behind.
	count, err := repo.CountActiveLoans(ctx, second.ID)
	if err != nil {
		t.Fatalf("unexpected error counting loans: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no loans for second account, got %d", count)
	}
}

func TestCreateLoanEnforcesLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "limit@example.com")

	for i := 0; i < 3; i++ {
		book := seedBook(t, repo, "Vol", 1)
		if err := repo.CreateLoan(ctx, newLoan(account.ID, book.ID), 3); err != nil {
			t.Fatalf("unexpected error creating loan %d: %v", i+1, err)
		}
	}

	extra := seedBook(t, repo, "One Too Many", 1)
	if err := repo.CreateLoan(ctx, newLoan(account.ID, extra.ID), 3); err != entity.ErrLoanLimitReached {
		t.Fatalf("expected ErrLoanLimitReached, got %v", err)
	}

	// Limit counts only active loans; returning one frees a slot.
	loans, err := repo.ListLoans(ctx, account.ID)
	if err != nil {
		t.Fatalf("unexpected error listing loans: %v", err)
	}
	if _, err := repo.ReturnLoan(ctx, loans[0].ID); err != nil {
		t.Fatalf("unexpected error returning loan: %v", err)
	}
	if err := repo.CreateLoan(ctx, newLoan(account.ID, extra.ID), 3); err != nil {
		t.Fatalf("expected loan after return, got %v", err)
	}
}

func TestReturnLoanRestoresQuantityOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "return@example.com")
	book := seedBook(t, repo, "Quincas Borba", 1)

	loan := newLoan(account.ID, book.ID)
	if err := repo.CreateLoan(ctx, loan, 3); err != nil {
		t.Fatalf("unexpected error creating loan: %v", err)
	}

	returned, err := repo.ReturnLoan(ctx, loan.ID)
	if err != nil {
		t.Fatalf("unexpected error returning loan: %v", err)
	}
	if !returned.Returned {
		t.Fatal("expected loan to be marked returned")
	}

	reloaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("unexpected error loading book: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("expected quantity restored to 1, got %d", reloaded.Quantity)
	}

	if _, err := repo.ReturnLoan(ctx, loan.ID); err != entity.ErrLoanAlreadyReturned {
		t.Fatalf("expected ErrLoanAlreadyReturned, got %v", err)
	}
	reloaded, err = repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("unexpected error loading book: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("expected quantity unchanged after double return, got %d", reloaded.Quantity)
	}
}

func TestCreateLoanMissingBook(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "nobook@example.com")

	err := repo.CreateLoan(ctx, newLoan(account.ID, 9999), 3)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing book, got %v", err)
	}
}

func TestConcurrentLoansSingleCopy(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	first := seedAccount(t, repo, "race1@example.com")
	second := seedAccount(t, repo, "race2@example.com")
	book := seedBook(t, repo, "Last Copy", 1)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, accountID := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(slot int, id uint) {
			defer wg.Done()
			results[slot] = repo.CreateLoan(ctx, newLoan(id, book.ID), 3)
		}(i, accountID)
	}
	wg.Wait()

	var created, unavailable int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, entity.ErrBookUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || unavailable != 1 {
		t.Fatalf("expected one loan and one rejection, got %d created / %d unavailable", created, unavailable)
	}

	reloaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("unexpected error loading book: %v", err)
	}
	if reloaded.Quantity != 0 {
		t.Fatalf("expected quantity 0 after race, got %d", reloaded.Quantity)
	}
}

func TestConcurrentReturnsIncrementOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "doublereturn@example.com")
	book := seedBook(t, repo, "Dom Casmurro", 1)

	loan := newLoan(account.ID, book.ID)
	if err := repo.CreateLoan(ctx, loan, 3); err != nil {
		t.Fatalf("unexpected error creating loan: %v", err)
	}

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = repo.ReturnLoan(ctx, loan.ID)
		}(i)
	}
	wg.Wait()

	var returned, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			returned++
		case errors.Is(err, entity.ErrLoanAlreadyReturned):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if returned != 1 || rejected != 1 {
		t.Fatalf("expected one return and one rejection, got %d returned / %d rejected", returned, rejected)
	}

	reloaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("unexpected error loading book: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("expected quantity restored to 1 exactly once, got %d", reloaded.Quantity)
	}
}

func TestAuditLogsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, action := range []string{entity.AuditActionRegister, entity.AuditActionActivate, entity.AuditActionLogin} {
		if err := repo.CreateAuditLog(ctx, &entity.DbAuditLog{Action: action}); err != nil {
			t.Fatalf("unexpected error creating audit log: %v", err)
		}
	}

	logs, err := repo.ListAuditLogs(ctx, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error listing audit logs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}
	if logs[0].Action != entity.AuditActionLogin {
		t.Fatalf("expected newest entry first, got %s", logs[0].Action)
	}
}

func TestDumpAndRestoreRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	account := seedAccount(t, repo, "dump@example.com")
	book := seedBook(t, repo, "Iracema", 3)
	if err := repo.CreateLoan(ctx, newLoan(account.ID, book.ID), 3); err != nil {
		t.Fatalf("unexpected error creating loan: %v", err)
	}
	if err := repo.CreateAuditLog(ctx, &entity.DbAuditLog{Action: entity.AuditActionLogin}); err != nil {
		t.Fatalf("unexpected error creating audit log: %v", err)
	}

	dump, err := repo.DumpAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error dumping: %v", err)
	}

	// A second repository plays the role of the restored instance.
	target := newTestRepo(t)
	seedAccount(t, target, "stale@example.com")

	if err := target.RestoreAll(ctx, dump); err != nil {
		t.Fatalf("unexpected error restoring: %v", err)
	}

	restored, err := target.DumpAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error dumping restored state: %v", err)
	}
	if len(restored.Accounts) != 1 || restored.Accounts[0].Email != "dump@example.com" {
		t.Fatalf("expected restore to replace accounts, got %+v", restored.Accounts)
	}
	if len(restored.Books) != 1 || restored.Books[0].Quantity != 2 {
		t.Fatalf("expected restored book with quantity 2, got %+v", restored.Books)
	}
	if len(restored.Loans) != 1 || len(restored.AuditLogs) != 1 {
		t.Fatalf("expected loans and audit logs restored, got %d/%d", len(restored.Loans), len(restored.AuditLogs))
	}
}
