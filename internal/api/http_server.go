package api

import (
	"biblioteca/internal/auth"
	"biblioteca/internal/config"
	"biblioteca/internal/mail"
	"biblioteca/internal/model"
	"biblioteca/internal/service"
	"biblioteca/internal/storage"
	"time"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	storage     storage.Storage
	mailer      mail.Mailer
	authManager *auth.Manager

	// 服务层
	authService *service.AuthService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, mailer mail.Mailer) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	refreshExpiry := time.Duration(cfg.JWTRefreshExpiryHours) * time.Hour
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry, refreshExpiry)
	if err != nil {
		return nil, err
	}

	authSvc := service.NewAuthService(repo, mailer, authManager, cfg.MaxLoginAttempts)

	return &HTTPHandler{
		cfg:         cfg,
		repo:        repo,
		storage:     store,
		mailer:      mailer,
		authManager: authManager,
		authService: authSvc,
	}, nil
}
