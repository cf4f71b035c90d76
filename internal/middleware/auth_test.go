package middleware

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-secret")

func signToken(t *testing.T, secret []byte, role model.Role, expires time.Time) string {
	t.Helper()
	claims := dto.AuthClaims{
		Email: "user@shop.test",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func newRouter(optional bool, roles ...model.Role) *echo.Echo {
	e := echo.New()
	middlewares := []echo.MiddlewareFunc{JWTAuth(testSecret, optional)}
	if len(roles) > 0 {
		middlewares = append(middlewares, RequireRole(roles...))
	}
	e.GET("/whoami", func(c echo.Context) error {
		actor := ActorFromContext(c)
		if actor == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, actor.ID+":"+string(actor.Role))
	}, middlewares...)
	return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := newRouter(false)
	valid := signToken(t, testSecret, model.RoleStaff, time.Now().Add(time.Hour))

	rec := do(e, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1:staff", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, signToken(t, []byte("other"), model.RoleAdmin, time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, signToken(t, testSecret, model.RoleAdmin, time.Now().Add(-time.Minute))).Code)
}

func TestJWTAuthOptional(t *testing.T) {
	e := newRouter(true)

	rec := do(e, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	// a bad token is still rejected
	assert.Equal(t, http.StatusUnauthorized, do(e, "garbage").Code)
}

func TestRequireRole(t *testing.T) {
	e := newRouter(false, model.RoleAdmin, model.RoleManager)

	assert.Equal(t, http.StatusForbidden, do(e, signToken(t, testSecret, model.RoleStaff, time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusOK, do(e, signToken(t, testSecret, model.RoleManager, time.Now().Add(time.Hour))).Code)
	assert.Equal(t, http.StatusOK, do(e, signToken(t, testSecret, model.RoleAdmin, time.Now().Add(time.Hour))).Code)
}
