package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

var ErrUnauthenticated = errors.New("unauthenticated")

// NewJwtMiddleware accepts HS256 bearer tokens carrying a user_id claim.
func NewJwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)

	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return fmt.Errorf("%w: missing token", ErrUnauthenticated)
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || len(key) == 0 {
			return fmt.Errorf("%w: invalid token", ErrUnauthenticated)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
		}
		raw, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid user id", ErrUnauthenticated)
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals(userIdLocal).(uuid.UUID)
	if !ok || userId == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return userId, nil
}

// SignToken issues a token the middleware accepts. Used by the admin CLI and tests.
func SignToken(secret string, userId uuid.UUID, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["user_id"] = userId.String()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
