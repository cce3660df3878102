package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
)

// Headers carrying the authenticated identity to handlers.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Middleware wraps a handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// JWTAuth accepts HMAC-signed bearer tokens carrying user_id and role claims.
// When issuer is non-empty the iss claim must match it.
func JWTAuth(secret, issuer string, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderUserRole)

			tokenString := extractToken(ctx)
			if tokenString == "" || secret == "" {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid token")
				return
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, true) {
				logger.Warn("jwt issuer mismatch", zap.Any("iss", claims["iss"]))
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid token")
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				userID, _ = claims["sub"].(string)
			}
			if userID == "" {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "token has no subject")
				return
			}
			role, _ := claims["role"].(string)

			ctx.Request.Header.Set(HeaderUserID, userID)
			ctx.Request.Header.Set(HeaderUserRole, role)
			next(ctx)
		}
	}
}

// RequireRole lets the request through only when X-User-Role is one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			role := string(ctx.Request.Header.Peek(HeaderUserRole))
			if _, ok := allowed[role]; !ok {
				reject(ctx, fasthttp.StatusForbidden, domain.ErrCodeForbidden, "insufficient role")
				return
			}
			next(ctx)
		}
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func reject(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(transport.NewError(string(code), message, nil).String())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}
