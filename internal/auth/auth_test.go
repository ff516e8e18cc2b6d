package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *JWTManager {
	return NewJWTManager("admin", "s3cret", "test-secret", time.Hour)
}

func TestJWTManager_Authenticate(t *testing.T) {
	m := newManager()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "s3cret", false},
		{"wrong password", "admin", "admin", true},
		{"wrong user", "root", "s3cret", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newManager()

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Name)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := newManager()
	issued := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newManager()

	other := NewJWTManager("admin", "s3cret", "another-secret", time.Hour)
	forged, err := other.GenerateToken("admin")
	require.NoError(t, err)
	_, err = m.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin", "iss": issuer})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager()
	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/private", Middleware(m), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Name)
	})

	tests := []struct {
		name       string
		prepare    func(*http.Request)
		wantStatus int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }, http.StatusOK},
		{"bad cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"}) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			} else {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}
