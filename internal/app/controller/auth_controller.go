package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
)

// TokenRevoker blacklists a token for the rest of its lifetime
type TokenRevoker func(ctx context.Context, token string, ttl time.Duration) error

// AuthController exposes session endpoints. Tokens are issued elsewhere;
// this service only verifies and revokes them.
type AuthController struct {
	revoke TokenRevoker
}

func NewAuthController(revoke TokenRevoker) *AuthController {
	return &AuthController{revoke: revoke}
}

// GetMe returns the identity carried by the bearer token
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	email, _ := middleware.GetUserEmail(c)
	role, _ := middleware.GetUserRole(c)

	respondOK(c, gin.H{
		"data": gin.H{
			"id":    userID,
			"email": email,
			"role":  role,
		},
	})
}

// Logout revokes the bearer token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, claims, ok := middleware.GetToken(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if ctrl.revoke != nil {
		if err := ctrl.revoke(c.Request.Context(), token, util.TokenTTL(claims)); err != nil {
			// logout always succeeds for the user; the token still expires on its own
			log.Error("Failed to revoke token during logout", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
		}
	}

	log.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})

	respondOK(c, gin.H{"message": "Logged out successfully"})
}
