package api

import (
	"biblioteca/internal/entity"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListLoans returns the caller's loans; administrators see every loan.
func (h *HTTPHandler) ListLoans(c *gin.Context) {
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	accountID := current.ID
	if current.IsAdmin() {
		accountID = 0
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	loans, err := h.repo.ListLoans(ctx, accountID)
	if err != nil {
		logrus.WithError(err).Error("failed to list loans")
		respondError(c, InternalError("failed to list loans"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

// CreateLoan opens a loan and decrements the book stock in one
// transaction. Librarians may loan on behalf of another account.
func (h *HTTPHandler) CreateLoan(c *gin.Context) {
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	var req entity.LoanCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid loan payload"))
		return
	}

	accountID := current.ID
	if req.AccountID != 0 && req.AccountID != current.ID {
		if !current.IsLibrarian() {
			respondError(c, Forbidden("cannot create loans for other accounts"))
			return
		}
		accountID = req.AccountID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if accountID != current.ID {
		target, err := h.repo.GetAccountByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, NotFound(ErrCodeAccountNotFound, "account not found"))
				return
			}
			logrus.WithError(err).Error("failed to load loan account")
			respondError(c, InternalError("failed to create loan"))
			return
		}
		if !target.CanLogin() {
			respondError(c, BadRequest("account cannot receive loans"))
			return
		}
	}

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, h.cfg.LoanDurationDays)
	if req.DueDate != nil {
		if req.DueDate.Before(now) {
			respondError(c, BadRequest("due date must be in the future"))
			return
		}
		dueDate = req.DueDate.UTC()
	}

	loan := &entity.DbLoan{
		AccountID: accountID,
		BookID:    req.BookID,
		LoanedAt:  now,
		DueDate:   dueDate,
	}

	if err := h.repo.CreateLoan(ctx, loan, h.cfg.LoanLimit); err != nil {
		switch {
		case errors.Is(err, entity.ErrBookUnavailable):
			respondError(c, NewAPIError(ErrCodeBookUnavailable, "book has no available copies"))
		case errors.Is(err, entity.ErrLoanLimitReached):
			details := map[string]interface{}{"limit": h.cfg.LoanLimit}
			if active, countErr := h.repo.CountActiveLoans(ctx, accountID); countErr == nil {
				details["active"] = active
			}
			respondError(c, NewAPIError(ErrCodeLoanLimit, "loan limit reached").WithDetails(details))
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondError(c, NotFound(ErrCodeBookNotFound, "book not found"))
		default:
			logrus.WithError(err).Error("failed to create loan")
			respondError(c, InternalError("failed to create loan"))
		}
		return
	}

	created, err := h.repo.GetLoanByID(ctx, loan.ID)
	if err != nil {
		logrus.WithError(err).WithField("loan_id", loan.ID).Error("failed to reload loan")
		created = loan
	}

	c.JSON(http.StatusCreated, gin.H{"loan": created})
}

// ReturnLoan closes a loan and restores the book stock in one transaction.
func (h *HTTPHandler) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	current := CurrentAccount(c)
	if current == nil {
		respondError(c, Unauthorized("not authenticated"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	existing, err := h.repo.GetLoanByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeLoanNotFound, "loan not found"))
			return
		}
		logrus.WithError(err).WithField("loan_id", id).Error("failed to load loan")
		respondError(c, InternalError("failed to return loan"))
		return
	}

	if existing.AccountID != current.ID && !current.IsLibrarian() {
		respondError(c, Forbidden("cannot return another account's loan"))
		return
	}

	loan, err := h.repo.ReturnLoan(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrLoanAlreadyReturned):
			respondError(c, NewAPIError(ErrCodeLoanReturned, "loan already returned"))
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondError(c, NotFound(ErrCodeLoanNotFound, "loan not found"))
		default:
			logrus.WithError(err).WithField("loan_id", id).Error("failed to return loan")
			respondError(c, InternalError("failed to return loan"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// SendLoanHistory emails an account's full loan history to its address.
func (h *HTTPHandler) SendLoanHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	account, err := h.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeAccountNotFound, "account not found"))
			return
		}
		logrus.WithError(err).WithField("account_id", id).Error("failed to load account")
		respondError(c, InternalError("failed to send loan history"))
		return
	}

	loans, err := h.repo.ListLoans(ctx, id)
	if err != nil {
		logrus.WithError(err).WithField("account_id", id).Error("failed to load loans")
		respondError(c, InternalError("failed to send loan history"))
		return
	}

	// The email reports active loans only; returned ones stay out.
	active := make([]entity.DbLoan, 0, len(loans))
	for _, loan := range loans {
		if !loan.Returned {
			active = append(active, loan)
		}
	}

	if err := h.mailer.SendLoanHistory(account, active); err != nil {
		logrus.WithError(err).WithField("email", account.Email).Error("failed to send loan history email")
		respondError(c, InternalError("failed to send loan history"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "loan history sent"})
}
