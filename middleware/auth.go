// auth.go - Session token middleware
//
// Authentication Flow:
// 1. Take the token from "Authorization: Bearer <token>" or the token cookie
// 2. Verify signature and expiry with the shared TokenCodec
// 3. Store the verified claims in the Gin context for handlers
//
// Admin routes run Auth first and then check the role carried by the claims.

package middleware

import (
	"net/http"
	"strings"

	"go-market-backend/auth"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie set at login and accepted in place of the header.
const TokenCookie = "token"

const claimsKey = "claims"

// Auth rejects requests without a valid session token.
func Auth(tokens *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Find the token
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		// STEP 2: Verify it
		claims, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// STEP 3: Hand the caller to the handlers
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous and invalid-token requests through unchanged.
func OptionalAuth(tokens *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if claims, err := tokens.Verify(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// Admin must run after Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// Claims returns the verified caller, or nil for anonymous requests.
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// extractToken prefers the Authorization header over the cookie.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token, err := c.Cookie(TokenCookie); err == nil {
		return token
	}
	return ""
}
