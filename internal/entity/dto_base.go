package entity

import "biblioteca/internal/entity/dto"

// Request/response aliases so handlers and services share one import.
type RegisterRequest = dto.RegisterRequest
type LoginRequest = dto.LoginRequest
type LoginResponse = dto.LoginResponse
type ActivateRequest = dto.ActivateRequest
type RecoverPasswordRequest = dto.RecoverPasswordRequest
type ResetPasswordRequest = dto.ResetPasswordRequest
type ResetPasswordQuestionRequest = dto.ResetPasswordQuestionRequest
type ChangePasswordRequest = dto.ChangePasswordRequest

type AccountSummary = dto.AccountSummary
type AccountQuery = dto.AccountQuery
type AccountUpdateRequest = dto.AccountUpdateRequest
type AccountListResponse = dto.AccountListResponse

type BookCreateRequest = dto.BookCreateRequest
type BookUpdateRequest = dto.BookUpdateRequest

type LoanCreateRequest = dto.LoanCreateRequest

type BackupResponse = dto.BackupResponse
type RestoreRequest = dto.RestoreRequest
type RestoreResponse = dto.RestoreResponse
