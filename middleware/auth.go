package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/utils"
)

const (
	localUserID   = "userID"
	localRole     = "role"
	localTokenID  = "jti"
	localTokenExp = "tokenExp"
)

// RevocationChecker reports whether a token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountChecker reports whether a user may still act on an issued token.
type AccountChecker interface {
	IsActive(ctx context.Context, userID uint) (bool, error)
}

// Protected verifies the bearer token and stores the caller's identity in locals.
// A nil checker skips the corresponding check.
func Protected(secret string, revoked RevocationChecker, accounts AccountChecker) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ErrorHandler:  jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return utils.SendError(c, utils.Unauthorized("Token không hợp lệ"))
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return utils.SendError(c, utils.Unauthorized("Token không hợp lệ"))
			}

			userID, err := extractUserID(claims)
			if err != nil {
				return utils.SendError(c, utils.Unauthorized("Token không hợp lệ"))
			}
			role, err := extractRole(claims)
			if err != nil {
				return utils.SendError(c, utils.Unauthorized("Token không hợp lệ"))
			}

			jti, _ := claims["jti"].(string)
			if revoked != nil && jti != "" {
				gone, err := revoked.IsRevoked(c.UserContext(), jti)
				if err != nil {
					return utils.SendError(c, fmt.Errorf("check token revocation: %w", err))
				}
				if gone {
					return utils.SendError(c, utils.Unauthorized("Phiên đăng nhập đã kết thúc"))
				}
			}
			if accounts != nil {
				active, err := accounts.IsActive(c.UserContext(), userID)
				if err != nil {
					return utils.SendError(c, fmt.Errorf("check account status: %w", err))
				}
				if !active {
					return utils.SendError(c, utils.Forbidden("Tài khoản đã ngừng hoạt động"))
				}
			}

			c.Locals(localUserID, userID)
			c.Locals(localRole, role)
			c.Locals(localTokenID, jti)
			if exp, ok := claims["exp"].(float64); ok {
				c.Locals(localTokenExp, time.Unix(int64(exp), 0))
			}
			return c.Next()
		},
	})
}

// Actor returns the authenticated caller set by Protected.
func Actor(c *fiber.Ctx) models.Actor {
	id, _ := c.Locals(localUserID).(uint)
	role, _ := c.Locals(localRole).(models.Role)
	return models.Actor{UserID: id, Role: role}
}

// Token returns the id and expiry of the token used for the request.
func Token(c *fiber.Ctx) (string, time.Time) {
	jti, _ := c.Locals(localTokenID).(string)
	exp, _ := c.Locals(localTokenExp).(time.Time)
	return jti, exp
}

// extractUserID accepts the numeric forms the id claim may decode into.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	idVal := claims["id"]
	if idVal == nil {
		return 0, fmt.Errorf("no ID found in claims")
	}

	switch v := idVal.(type) {
	case float64:
		if v <= 0 {
			return 0, fmt.Errorf("invalid ID %v", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse ID string: %v", err)
		}
		return uint(parsed), nil
	case uint:
		return v, nil
	case int:
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", v)
	}
}

func extractRole(claims jwt.MapClaims) (models.Role, error) {
	roleVal, ok := claims["role"].(string)
	if !ok {
		return "", fmt.Errorf("no role found in claims")
	}
	role := models.Role(roleVal)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", roleVal)
	}
	return role, nil
}

func jwtError(c *fiber.Ctx, err error) error {
	return utils.SendError(c, utils.Unauthorized("Token không hợp lệ hoặc đã hết hạn"))
}
