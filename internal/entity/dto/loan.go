package dto

import "time"

// LoanCreateRequest registers a new loan. AccountID is optional; when
// omitted the loan is created for the caller.
type LoanCreateRequest struct {
	AccountID uint       `json:"account_id" binding:"omitempty,gt=0"`
	BookID    uint       `json:"book_id" binding:"required,gt=0"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}
