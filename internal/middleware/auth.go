package middleware

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const authContextKey = "auth"

// Authenticator 校验令牌并返回声明，由 service.AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// 下载链接可以通过查询参数携带令牌
	return c.Query("token")
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			logger.Log.Debug("authentication failed", zap.String("path", c.FullPath()), zap.Error(err))
			util.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(util.ClaimsContextKey, claims)
		c.Set(authContextKey, access.FromClaims(claims))
		c.Next()
	}
}

func RoleMiddleware(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := CurrentAuth(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if err := access.RequireRole(ac, roles...); err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAuth 读取 AuthMiddleware 写入的调用方身份
func CurrentAuth(c *gin.Context) (access.AuthContext, bool) {
	v, exists := c.Get(authContextKey)
	if !exists {
		return access.AuthContext{}, false
	}
	ac, ok := v.(access.AuthContext)
	return ac, ok
}
