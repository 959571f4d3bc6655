package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mlmadmin/pkg/utils"
)

const (
	CSRFHeader = "X-CSRF-Token"
	CSRFCookie = "csrf_token"
)

// CSRFTokens issues and verifies tokens of the form "<nonce>.<hmac(user|nonce)>",
// bound to the authenticated user id.
type CSRFTokens struct {
	secret []byte
}

func NewCSRFTokens(secret string) *CSRFTokens {
	return &CSRFTokens{secret: []byte(secret)}
}

func (t *CSRFTokens) Issue(userID string) (string, error) {
	nonce, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", err
	}
	return nonce + "." + t.sign(userID, nonce), nil
}

func (t *CSRFTokens) Verify(userID, token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	if _, err := hex.DecodeString(nonce); err != nil {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(t.sign(userID, nonce)))
}

func (t *CSRFTokens) sign(userID, nonce string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(userID + "|" + nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CSRFMiddleware must run after JWTAuthMiddleware. Safe methods pass through.
func CSRFMiddleware(tokens *CSRFTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" || !tokens.Verify(c.GetString(ContextUserID), token) {
			utils.RespondError(c, http.StatusForbidden, "Missing or invalid CSRF token")
			c.Abort()
			return
		}
		c.Next()
	}
}
