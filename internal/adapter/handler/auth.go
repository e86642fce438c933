package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/maspatas/ledger/internal/core/service"
	"github.com/maspatas/ledger/internal/platform/logger"
)

const roleContextKey = "role"

// AuthMiddleware exchanges static per-role credentials for signed JWTs and
// asserts the role claim on protected routes.
type AuthMiddleware struct {
	secret []byte
	authz  *service.AuthorizationService
	tokens map[string]service.Role
	log    *logger.Logger
}

func NewAuthMiddleware(secret string, authz *service.AuthorizationService, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		authz:  authz,
		tokens: map[string]service.Role{
			"admin-token":     service.RoleAdmin,
			"seller-token":    service.RoleVendedor,
			"inventory-token": service.RoleInventario,
		},
		log: log,
	}
}

type issueTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type issueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IssueToken handles POST /auth/token.
func (m *AuthMiddleware) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cuerpo de petición inválido"})
		return
	}

	role, ok := m.tokens[req.Token]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token inválido"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(12 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		m.log.Error("sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "error interno"})
		return
	}

	c.JSON(http.StatusOK, issueTokenResponse{AccessToken: signed, TokenType: "bearer"})
}

// RequireRole validates the bearer JWT and stores the role in the request
// context for handlers to read.
func (m *AuthMiddleware) RequireRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token inválido"})
			return
		}

		role, err := m.roleFromJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token inválido"})
			return
		}
		c.Set(roleContextKey, role)
		c.Next()
	}
}

func (m *AuthMiddleware) roleFromJWT(tokenString string) (service.Role, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	roleClaim, _ := claims["role"].(string)
	role := service.Role(roleClaim)
	if !m.authz.KnownRole(role) {
		return "", fmt.Errorf("unknown role %q", roleClaim)
	}
	return role, nil
}

func roleFromContext(c *gin.Context) service.Role {
	if value, ok := c.Get(roleContextKey); ok {
		if role, ok := value.(service.Role); ok {
			return role
		}
	}
	return ""
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
