package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/loanapplication/pkg/response"
)

// 角色
const (
	RoleClient  = "CLIENT"
	RoleAdvisor = "ADVISOR"
)

const identityKey = "identity"

type bearerTokenKey struct{}

// Claims JWT 载荷，subject 为用户邮箱
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity 已认证调用方
type Identity struct {
	Subject string
	Role    string
	Token   string
}

// Authenticator HS256 Bearer 认证与角色校验
type Authenticator struct {
	secret  []byte
	enabled bool
}

// NewAuthenticator 创建认证器；enabled 为 false 时所有请求直接放行
func NewAuthenticator(secret string, enabled bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), enabled: enabled}
}

// Require 校验 Bearer token 并要求角色属于 roles
func (a *Authenticator) Require(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled {
			c.Next()
			return
		}

		identity, err := a.parse(c.GetHeader("Authorization"))
		if err != nil {
			response.ErrorWithStatus(c, http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, identity.Role) {
			response.ErrorWithStatus(c, http.StatusForbidden, "insufficient role", "FORBIDDEN")
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(WithBearerToken(c.Request.Context(), identity.Token))
		c.Next()
	}
}

func (a *Authenticator) parse(header string) (Identity, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Identity{}, errors.New("missing bearer token")
	}
	raw = strings.TrimSpace(raw)

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token subject is empty")
	}

	return Identity{Subject: claims.Subject, Role: claims.Role, Token: raw}, nil
}

// IssueToken 签发 HS256 token，供测试与运维工具使用
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// IdentityFrom 读取认证中间件写入的调用方
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

// WithBearerToken 将调用方 token 写入 context，下游 HTTP 客户端据此转发
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// BearerTokenFrom 读取调用方 token
func BearerTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey{}).(string)
	return token, ok && token != ""
}
