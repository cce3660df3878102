package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func run(h fasthttp.RequestHandler, authorization string, extraHeaders map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	for k, v := range extraHeaders {
		ctx.Request.Header.Set(k, v)
	}
	h(ctx)
	return ctx
}

func captureIdentity(userID, role *string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		*userID = string(ctx.Request.Header.Peek(HeaderUserID))
		*role = string(ctx.Request.Header.Peek(HeaderUserRole))
		ctx.SetStatusCode(fasthttp.StatusOK)
	}
}

func TestJWTAuthSetsIdentityHeaders(t *testing.T) {
	var userID, role string
	h := JWTAuth(testSecret, "dispatch", nil)(captureIdentity(&userID, &role))

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "u1", "role": "admin", "iss": "dispatch", "exp": time.Now().Add(time.Hour).Unix(),
	})
	ctx := run(h, "Bearer "+token, map[string]string{HeaderUserID: "spoofed"})

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "admin", role)
}

func TestJWTAuthFallsBackToSubject(t *testing.T) {
	var userID, role string
	h := JWTAuth(testSecret, "", nil)(captureIdentity(&userID, &role))
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u2", "role": "driver"})

	ctx := run(h, token, nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "u2", userID)
	assert.Equal(t, "driver", role)
}

func TestJWTAuthRejects(t *testing.T) {
	next := func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusOK) }
	h := JWTAuth(testSecret, "dispatch", nil)(next)

	cases := map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-token",
		"wrong secret": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": "u1", "iss": "dispatch"}),
		"expired": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"user_id": "u1", "iss": "dispatch", "exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"wrong issuer": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "u1", "iss": "else"}),
		"no subject":   "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"iss": "dispatch"}),
		"alg none":     "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": "u1", "iss": "dispatch"}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := run(h, header, nil)
			assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
			assert.Contains(t, string(ctx.Response.Body()), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusOK) }
	h := RequireRole("admin", "manager")(next)

	assert.Equal(t, fasthttp.StatusOK, run(h, "", map[string]string{HeaderUserRole: "manager"}).Response.StatusCode())
	assert.Equal(t, fasthttp.StatusForbidden, run(h, "", map[string]string{HeaderUserRole: "driver"}).Response.StatusCode())
	assert.Equal(t, fasthttp.StatusForbidden, run(h, "", nil).Response.StatusCode())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("a"), mw("b"))
	h(&fasthttp.RequestCtx{})
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
