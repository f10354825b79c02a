package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"procurepay/internal/model"
	"procurepay/pkg/response"
)

const identityKey = "stubIdentity"

// tokenTTL matches the production backend's 24h access tokens.
const tokenTTL = 24 * time.Hour

// IssueToken signs a bearer token for u.
func IssueToken(secret []byte, u *User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(u.ID, 10),
		"role": u.Role,
		"name": u.Name,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(secret)
}

// RequireRole validates the bearer token and checks the caller's role
// against the allowed list. Admin always passes.
func RequireRole(secret []byte, allowed ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authentication credentials were not provided."))
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid authorization header. Expected 'Bearer <token>'."))
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid or expired token."))
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token claims."))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid token subject."))
			return
		}
		roleClaim, _ := claims["role"].(string)
		name, _ := claims["name"].(string)
		role := model.Role(roleClaim)

		if len(allowed) > 0 && role != model.RoleAdmin {
			permitted := false
			for _, r := range allowed {
				if role == r {
					permitted = true
					break
				}
			}
			if !permitted {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error("You do not have permission to perform this action."))
				return
			}
		}

		c.Set(identityKey, Identity{UserID: userID, Name: name, Role: role})
		c.Next()
	}
}

// identityFrom returns the authenticated caller set by RequireRole.
func identityFrom(c *gin.Context) Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(Identity)
	return id
}
