package http

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pdbogen/slackin/model/user"
)

// sessionClaims is the token the embedding site sets once a visitor logs in there.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Viewer returns the logged-in visitor, or nil for anyone without a valid session token.
func (h *Http) Viewer(req *http.Request) *user.User {
	if h.opts.AuthSecret == "" {
		return nil
	}
	c, err := req.Cookie(h.opts.AuthCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(token *jwt.Token) (any, error) {
		return []byte(h.opts.AuthSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		log.Debugf("ignoring session cookie from %s: %s", req.RemoteAddr, err)
		return nil
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return nil
	}
	return &user.User{Email: email, Name: claims.Name}
}
