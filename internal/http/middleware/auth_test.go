package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/havenlane/leasehold-backend/internal/platform/logger"
	"github.com/havenlane/leasehold-backend/internal/requestdata"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authTestRouter(t *testing.T) (*gin.Engine, *requestdata.RequestData) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	captured := &requestdata.RequestData{}
	r := gin.New()
	r.Use(NewAuthMiddleware(log, testSecret).RequireAuth())
	r.GET("/probe", func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
			*captured = *rd
		}
		c.Status(http.StatusOK)
	})
	return r, captured
}

func TestRequireAuthAttachesCallerIdentity(t *testing.T) {
	r, captured := authTestRouter(t)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, "landlord"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if captured.UserID != userID {
		t.Fatalf("user id = %s, want %s", captured.UserID, userID)
	}
	if captured.Role != "landlord" {
		t.Fatalf("role = %q, want landlord", captured.Role)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	r, _ := authTestRouter(t)

	cases := map[string]string{
		"missing header": "",
		"wrong secret":   "Bearer " + signToken(t, "other-secret", uuid.New(), "tenant"),
		"garbage":        "Bearer not.a.token",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	r, _ := authTestRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Role: "tenant",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
