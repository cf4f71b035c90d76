package middleware

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// JWTAuth verifies the bearer token and puts the actor into the echo context.
// With optional set, requests without a token pass through anonymously.
func JWTAuth(secret []byte, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && optional {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			claims := &dto.AuthClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(actorKey, &dto.Actor{
				ID:    claims.Subject,
				Email: claims.Email,
				Role:  claims.Role,
			})
			return next(c)
		}
	}
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

func ActorFromContext(c echo.Context) *dto.Actor {
	actor, _ := c.Get(actorKey).(*dto.Actor)
	return actor
}
