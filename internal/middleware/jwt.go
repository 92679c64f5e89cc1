package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
)

// NewAuthMiddleware validates bearer tokens and stores the authenticated
// user ID in the request context. With a JWKS URL the signing keys are
// fetched and refreshed from the identity provider; otherwise the shared
// HMAC secret is used.
func NewAuthMiddleware(secret, jwksURL string) (echo.MiddlewareFunc, error) {
	if jwksURL == "" {
		return echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(secret),
			SuccessHandler: func(c echo.Context) {
				token, ok := c.Get("user").(*jwt.Token)
				if !ok {
					return
				}
				if userID, ok := subjectID(token); ok {
					ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
					c.SetRequest(c.Request().WithContext(ctx))
				}
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			},
		}), nil
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute,
	})
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, jwks.Keyfunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, ok := subjectID(token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user_id in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}, nil
}

func subjectID(token *jwt.Token) (uuid.UUID, bool) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
