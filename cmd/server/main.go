package main

import (
	"biblioteca/internal/api"
	"biblioteca/internal/config"
	"biblioteca/internal/entity"
	"biblioteca/internal/mail"
	"biblioteca/internal/model"
	"biblioteca/internal/storage"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	mailer := mail.NewMailer(cfg)

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, mailer)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	// 公开接口
	apiGroup.POST("/accounts", httpHandler.Register)
	apiGroup.POST("/accounts/login", httpHandler.Login)
	apiGroup.POST("/accounts/activate", httpHandler.Activate)
	apiGroup.POST("/accounts/recover-password", httpHandler.RecoverPassword)
	apiGroup.POST("/accounts/reset-password", httpHandler.ResetPassword)
	apiGroup.POST("/accounts/reset-password-question", httpHandler.ResetPasswordQuestion)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())
	protected.GET("/accounts/me", httpHandler.Me)
	protected.PUT("/accounts/me", httpHandler.UpdateMe)
	protected.PUT("/accounts/me/password", httpHandler.ChangePassword)
	protected.GET("/books", httpHandler.ListBooks)
	protected.GET("/loans", httpHandler.ListLoans)
	protected.POST("/loans", httpHandler.CreateLoan)
	protected.POST("/loans/:id/return", httpHandler.ReturnLoan)

	// 图书管理员接口
	librarian := protected.Group("")
	librarian.Use(httpHandler.RequireLevel(entity.AccessLevelLibrarian))
	librarian.POST("/books", httpHandler.CreateBook)
	librarian.PUT("/books/:id", httpHandler.UpdateBook)

	// 系统管理员接口
	admin := protected.Group("")
	admin.Use(httpHandler.RequireLevel(entity.AccessLevelAdmin))
	admin.DELETE("/books/:id", httpHandler.DeleteBook)
	admin.GET("/accounts", httpHandler.ListAccounts)
	admin.POST("/accounts/:id/unlock", httpHandler.UnlockAccount)
	admin.DELETE("/accounts/:id", httpHandler.DeleteAccount)
	admin.GET("/audit-logs", httpHandler.ListAuditLogs)
	admin.POST("/loans/:id/email", httpHandler.SendLoanHistory)
	admin.POST("/backup", httpHandler.Backup)
	admin.POST("/restore", httpHandler.Restore)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Refresh-Token")
		c.Header("Access-Control-Expose-Headers", "X-New-Token, X-New-Refresh-Token")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
