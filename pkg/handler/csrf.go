package handler

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
)

// CSRFHeader is the request header carrying the CSRF token.
const CSRFHeader = "X-CSRF-Token"

// CSRFCookieName is the default name of the CSRF cookie.
const CSRFCookieName = "__tessera_csrf"

// generateToken returns a new token. With a secret the token is a 16-byte
// nonce followed by its HMAC-SHA256 signature.
func generateToken(secret []byte) string {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	if secret == nil {
		return base64.URLEncoding.EncodeToString(nonce)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(nonce)
	return base64.URLEncoding.EncodeToString(append(nonce, mac.Sum(nil)...))
}

// validToken reports whether token may be reused. Without a secret any
// non-empty token is accepted.
func validToken(token string, secret []byte) bool {
	if token == "" || len(token) > 128 {
		return false
	}
	if secret == nil {
		return true
	}

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(decoded) != 48 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(decoded[:16])
	return hmac.Equal(decoded[16:], mac.Sum(nil))
}

// requestToken picks the token for r: the header first, then the cookie.
// The second result is false when a new token was generated.
func (h *Handler) requestToken(r *http.Request) (string, bool) {
	if t := r.Header.Get(CSRFHeader); validToken(t, h.cfg.Secret) {
		return t, true
	}
	if c, err := r.Cookie(h.cfg.CookieName); err == nil && validToken(c.Value, h.cfg.Secret) {
		return c.Value, true
	}
	return generateToken(h.cfg.Secret), false
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // read by client script for double submit
		SameSite: h.cfg.SameSite,
		Secure:   h.cfg.SecureCookies || r.TLS != nil,
	})
}
