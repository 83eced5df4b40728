package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mariocelzo/biblioflow-app-sub000/internal/domain/user"
)

const actorKey = "actor"

// Claims はアクセストークンのクレーム（sub に利用者ID、role に権限）
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth は Bearer トークンを検証し、操作主体をコンテキストに設定する
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}

			claims := &Claims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "無効な認証トークンです")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンに利用者IDがありません")
			}

			role := user.RoleUser
			if claims.Role != "" {
				r, err := user.ParseRole(claims.Role)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				}
				role = r
			}

			c.Set(actorKey, user.Actor{UserID: claims.Subject, Role: role})
			return next(c)
		}
	}
}

// RequireOperator はオペレーター以上の権限を要求する
func RequireOperator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}
			if !actor.Role.CanOperate() {
				return echo.NewHTTPError(http.StatusForbidden, "この操作の権限がありません")
			}
			return next(c)
		}
	}
}

// ActorFrom はコンテキストの操作主体を返す
func ActorFrom(c echo.Context) (user.Actor, bool) {
	actor, ok := c.Get(actorKey).(user.Actor)
	return actor, ok
}

// WithActor はコンテキストに操作主体を設定する
func WithActor(c echo.Context, actor user.Actor) {
	c.Set(actorKey, actor)
}

// IssueToken は HS256 で署名したアクセストークンを発行する
func IssueToken(secret []byte, actor user.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
