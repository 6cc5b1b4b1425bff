package dto

import (
	"biblioteca/internal/entity/common"
	"time"
)

// AccountSummary is a lightweight account description returned to clients.
type AccountSummary struct {
	ID               uint       `json:"id"`
	Kind             string     `json:"kind"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	RegistrationNo   string     `json:"registration_no,omitempty"`
	AccessLevel      int        `json:"access_level"`
	Status           string     `json:"status"`
	Locked           bool       `json:"locked"`
	SecurityQuestion string     `json:"security_question,omitempty"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AccountQuery supports listing accounts with pagination.
type AccountQuery struct {
	common.BaseParams
	Kind    string `json:"kind" form:"kind" query:"kind"`
	Status  string `json:"status" form:"status" query:"status"`
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
}

// AccountUpdateRequest updates the caller's own profile.
type AccountUpdateRequest struct {
	Name             *string `json:"name,omitempty"`
	SecurityQuestion *string `json:"security_question,omitempty"`
	SecurityAnswer   *string `json:"security_answer,omitempty"`
}

// AccountListResponse is the response for listing accounts.
type AccountListResponse struct {
	Accounts []AccountSummary `json:"accounts"`
	Meta     *common.Meta     `json:"meta"`
}
