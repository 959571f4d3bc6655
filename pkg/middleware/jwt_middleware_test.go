package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/pkg/utils"
)

func adminRouter(issuer *utils.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", JWTAuthMiddleware(issuer), RoleMiddleware("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRoleMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	r := adminRouter(issuer)
	adminID := uuid.New()

	adminToken, err := issuer.CreateToken(adminID, "admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	memberToken, err := issuer.CreateToken(uuid.New(), "member")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	forged, err := utils.NewTokenIssuer("other-secret", time.Hour).CreateToken(adminID, "admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "admin", token: adminToken, want: http.StatusOK},
		{name: "member", token: memberToken, want: http.StatusForbidden},
		{name: "missing", token: "", want: http.StatusUnauthorized},
		{name: "wrong key", token: forged, want: http.StatusUnauthorized},
		{name: "garbage", token: "not.a.jwt", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.token)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK && w.Body.String() != adminID.String() {
				t.Fatalf("user id = %q", w.Body.String())
			}
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := utils.NewTokenIssuer("test-secret", -time.Minute)
	token, err := issuer.CreateToken(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if w := get(adminRouter(issuer), token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
