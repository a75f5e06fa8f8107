package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/blues/cfp/internal/auth"
	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey 当前登录用户在 gin.Context 中的键
	ContextUserKey = "current_user"
	// ContextIdentityKey 浏览身份在 gin.Context 中的键
	ContextIdentityKey = "view_identity"
)

// Auth 认证中间件集合
type Auth struct {
	issuer    *auth.TokenIssuer
	userLogic *logic.UserLogic
}

// NewAuth 创建认证中间件集合
func NewAuth(issuer *auth.TokenIssuer, userLogic *logic.UserLogic) *Auth {
	return &Auth{issuer: issuer, userLogic: userLogic}
}

// RequireAuth 要求携带有效令牌
// 角色等状态不信任令牌载荷，每次请求从存储层重新加载
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolveUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "认证失败，请重新登录",
			})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRole 要求当前用户具备指定角色之一
func (a *Auth) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "认证失败，请重新登录",
			})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "当前角色无权执行此操作",
		})
	}
}

// OptionalAuth 可选认证，用于公开端点的浏览身份解析
// 已登录用户身份为 user:<id>，匿名访客按会话头或客户端IP归并
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.resolveUser(c); err == nil {
			c.Set(ContextUserKey, user)
			c.Set(ContextIdentityKey, logic.ViewIdentity{
				UserId: &user.Id,
				Key:    fmt.Sprintf("user:%d", user.Id),
			})
			c.Next()
			return
		}

		sessionKey := c.GetHeader("X-Session-Id")
		if sessionKey == "" {
			sessionKey = c.ClientIP()
		}
		c.Set(ContextIdentityKey, logic.ViewIdentity{
			Key: "anon:" + sessionKey,
		})
		c.Next()
	}
}

func (a *Auth) resolveUser(c *gin.Context) (*model.UserModel, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("malformed authorization header")
	}

	userId, err := a.issuer.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	return a.userLogic.GetById(userId)
}

// CurrentUser 读取当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *model.UserModel {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*model.UserModel)
	if !ok {
		return nil
	}
	return user
}

// ViewIdentityFrom 读取浏览身份
func ViewIdentityFrom(c *gin.Context) logic.ViewIdentity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return logic.ViewIdentity{Key: "anon:" + c.ClientIP()}
	}
	identity, ok := value.(logic.ViewIdentity)
	if !ok {
		return logic.ViewIdentity{Key: "anon:" + c.ClientIP()}
	}
	return identity
}
