package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cadi-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ===== Session/JWT primitives =====

var (
	errMissingSession = errors.New("missing session")
	errInvalidSession = errors.New("invalid session")
)

type AuthConfig struct {
	HMACSecret     []byte
	CookieName     string
	CookieDomain   string
	SecureCookie   bool
	TTL            time.Duration
	CSRFCookieName string
	CSRFHeaderName string
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(c config.AuthConfig) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret:     []byte(c.JWTSecret),
		CookieName:     c.CookieName,
		CookieDomain:   c.CookieDomain, // "" keeps a host-only cookie
		SecureCookie:   c.SecureCookie,
		TTL:            c.SessionTTL,
		CSRFCookieName: c.CSRFCookieName,
		CSRFHeaderName: c.CSRFHeaderName,
	}}
}

// SessionClaims carries the user id in Subject.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Mint signs a session for userID and sets the session cookie.
func (a *AuthManager) Mint(w http.ResponseWriter, userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   userID,
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil && c.Value != "" {
		return a.parse(c.Value)
	}
	return nil, errMissingSession
}

func (a *AuthManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errInvalidSession
	}
	return claims, nil
}

// ===== CSRF (double submit) =====

// EnsureCSRF sets the CSRF cookie when the request does not carry one and
// returns the token in effect.
func (a *AuthManager) EnsureCSRF(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(a.cfg.CSRFCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	tok := strings.ReplaceAll(uuid.NewString(), "-", "")
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CSRFCookieName,
		Value:    tok,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   int(a.cfg.TTL.Seconds()),
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return tok
}

// CheckCSRF compares the header against the cookie. Bearer-authenticated
// requests carry no ambient credentials and skip the check.
func (a *AuthManager) CheckCSRF(r *http.Request) bool {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Authorization")), "bearer ") {
		return true
	}
	c, err := r.Cookie(a.cfg.CSRFCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return r.Header.Get(a.cfg.CSRFHeaderName) == c.Value
}
