package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

type JWTConfig struct {
	Secret string
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, username, secret string, expireSeconds int64) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireSeconds) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// NewJWTAuth 认证中间件，匿名请求直接 401
func NewJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, cfg.Secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

// NewOptionalJWTAuth 公共路由用的中间件：带合法 token 时注入用户，
// 匿名请求照常放行
func NewOptionalJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromRequest(c, cfg.Secret); ok {
			c.Set(userIDKey, claims.UserID)
			c.Set(usernameKey, claims.Username)
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, secret string) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return nil, false
	}

	claims, err := ParseToken(tokenString, secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID 返回当前请求的用户 ID，匿名请求返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}
