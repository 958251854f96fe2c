package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farhan-labs/mobicash/internal/auth"
	"github.com/farhan-labs/mobicash/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	claims *auth.Claims
	err    error

	gotToken string
}

func (s *stubVerifier) Verify(token string) (*auth.Claims, error) {
	s.gotToken = token
	return s.claims, s.err
}

func protectedRouter(v middlewares.TokenVerifier) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(v)

	r.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	validClaims := &auth.Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	tests := []struct {
		name           string
		header         string
		verifier       *stubVerifier
		wantStatusCode int
	}{
		{
			name:           "missing_header_is_401",
			header:         "",
			verifier:       &stubVerifier{claims: validClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "non_bearer_scheme_is_401",
			header:         "Basic dXNlcjpwYXNz",
			verifier:       &stubVerifier{claims: validClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty_bearer_is_401",
			header:         "Bearer ",
			verifier:       &stubVerifier{claims: validClaims},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// present but bad token is a 403, not a 401
			name:           "rejected_token_is_403",
			header:         "Bearer not-a-token",
			verifier:       &stubVerifier{err: errors.New("invalid token")},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "valid_token_passes",
			header:         "Bearer good-token",
			verifier:       &stubVerifier{claims: validClaims},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(tt.verifier)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuth_StripsBearerPrefix(t *testing.T) {
	v := &stubVerifier{claims: &auth.Claims{UserID: "user-1"}}
	r := protectedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if v.gotToken != "abc.def.ghi" {
		t.Errorf("verifier saw %q, want abc.def.ghi", v.gotToken)
	}
}

func TestRequireAuth_SetsIdentityOnContext(t *testing.T) {
	v := &stubVerifier{claims: &auth.Claims{UserID: "user-42"}}

	r := gin.New()
	mw := middlewares.NewAuthMiddleware(v)

	var gotID string
	var gotClaims *auth.Claims

	r.GET("/whoami", mw.RequireAuth(), func(c *gin.Context) {
		gotID, _ = middlewares.UserIDFromContext(c)
		gotClaims, _ = middlewares.ClaimsFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotID != "user-42" {
		t.Errorf("user id = %q, want user-42", gotID)
	}
	if gotClaims == nil || gotClaims.UserID != "user-42" {
		t.Errorf("claims = %+v, want UserID user-42", gotClaims)
	}
}
