package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"biblioteca/internal/auth"
	"biblioteca/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentAccountContextKey = "current-account"

	refreshTokenHeader    = "X-Refresh-Token"
	newTokenHeader        = "X-New-Token"
	newRefreshTokenHeader = "X-New-Refresh-Token"
)

// RequestAccount 存储请求上下文中的认证账户信息
type RequestAccount struct {
	ID          uint
	Email       string
	Name        string
	AccessLevel int
}

// IsLibrarian reports whether the account can manage the book inventory.
func (a *RequestAccount) IsLibrarian() bool {
	if a == nil {
		return false
	}
	return a.AccessLevel >= entity.AccessLevelLibrarian
}

// IsAdmin reports whether the account holds the administrative level.
func (a *RequestAccount) IsAdmin() bool {
	if a == nil {
		return false
	}
	return a.AccessLevel >= entity.AccessLevelAdmin
}

// AuthMiddleware JWT 认证中间件
//
// An expired access token accompanied by a valid refresh token in the
// X-Refresh-Token header is renewed in place; the new pair is returned
// in response headers and the request proceeds.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				claims = h.tryRefresh(c)
			}
			if claims == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeSessionExpired,
					Message: "session expired, please log in again",
				})
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		account, err := h.repo.GetAccountByID(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeAccountNotFound,
					Message: "account no longer exists",
				})
				return
			}
			logrus.WithError(err).WithField("account_id", claims.AccountID).Error("failed to load account")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify account",
			})
			return
		}

		if account.Deleted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeAccountNotFound,
				Message: "account no longer exists",
			})
			return
		}
		if account.Locked {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeAccountLocked,
				Message: "account is locked",
			})
			return
		}
		if account.Status != entity.AccountStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeAccountInactive,
				Message: "account is not activated",
			})
			return
		}

		c.Set(currentAccountContextKey, &RequestAccount{
			ID:          account.ID,
			Email:       account.Email,
			Name:        account.Name,
			AccessLevel: account.AccessLevel,
		})
		c.Next()
	}
}

// tryRefresh validates the refresh token header and, when it holds, issues
// a new token pair via response headers. Returns nil when no refresh is
// possible.
func (h *HTTPHandler) tryRefresh(c *gin.Context) *auth.Claims {
	refreshToken := strings.TrimSpace(c.GetHeader(refreshTokenHeader))
	if refreshToken == "" {
		return nil
	}

	claims, err := h.authManager.ParseToken(refreshToken)
	if err != nil {
		logrus.WithError(err).Debug("refresh token rejected")
		return nil
	}

	newToken, _, err := h.authManager.GenerateToken(claims.AccountID, claims.AccessLevel)
	if err != nil {
		logrus.WithError(err).Error("failed to issue refreshed token")
		return nil
	}
	newRefresh, _, err := h.authManager.GenerateRefreshToken(claims.AccountID, claims.AccessLevel)
	if err != nil {
		logrus.WithError(err).Error("failed to issue refreshed refresh token")
		return nil
	}

	c.Header(newTokenHeader, newToken)
	c.Header(newRefreshTokenHeader, newRefresh)
	return claims
}

// RequireLevel 访问级别守卫中间件
func (h *HTTPHandler) RequireLevel(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil || account.AccessLevel < level {
			actual := -1
			if account != nil {
				actual = account.AccessLevel
			}
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "insufficient access level",
				Details: map[string]interface{}{
					"required_level": level,
					"actual_level":   actual,
				},
			})
			return
		}
		c.Next()
	}
}

// CurrentAccount 从上下文获取当前认证账户
func CurrentAccount(c *gin.Context) *RequestAccount {
	value, exists := c.Get(currentAccountContextKey)
	if !exists {
		return nil
	}
	account, ok := value.(*RequestAccount)
	if !ok {
		return nil
	}
	return account
}
