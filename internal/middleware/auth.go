package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/pkg/httpcontext"
)

// SessionValidator checks that a session id still resolves to a live
// session. The auth use case satisfies it.
type SessionValidator interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// JWTAuth verifies the bearer token, confirms its session is still
// alive, and stamps the user id header the context adapter picks up.
// EventSource cannot set headers, so a token query argument is accepted
// as a fallback for the stream endpoint.
func JWTAuth(secret string, sessions SessionValidator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			userID, sessionID, ok := identityClaims(token)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			if sessions != nil {
				session, err := sessions.GetSession(ctx, sessionID)
				if err != nil || session.UserID != userID {
					ctx.SetStatusCode(fasthttp.StatusUnauthorized)
					return
				}
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, strconv.FormatInt(userID, 10))
			next(ctx)
		}
	}
}

func identityClaims(token *jwt.Token) (int64, string, bool) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}
	rawUser, ok := claims["user_id"].(float64)
	if !ok || rawUser <= 0 {
		return 0, "", false
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return 0, "", false
	}
	return int64(rawUser), sessionID, true
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if header != "" {
		return header
	}
	return string(ctx.QueryArgs().Peek("token"))
}
