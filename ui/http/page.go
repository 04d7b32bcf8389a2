package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/pdbogen/slackin/common/rand"
	"github.com/pdbogen/slackin/controller/invite"
	"github.com/pdbogen/slackin/model/dashboard"
	"github.com/pdbogen/slackin/model/user"
)

const (
	csrfCookie = "slackin_csrf"
	csrfField  = "csrf"
	csrfBytes  = 16
)

type pageData struct {
	Dashboard dashboard.View
	Form      invite.Form
	Success   bool
	Errors    []string
	CSRF      string
	Viewer    *user.User
}

type errorData struct {
	Message string
}

// GetPage renders the dashboard and an invite form prefilled with the viewer's email.
func (h *Http) GetPage(rw http.ResponseWriter, req *http.Request) {
	viewer, ok := h.pageViewer(rw, req)
	if !ok {
		return
	}
	snap, ok := h.pageDashboard(rw, req)
	if !ok {
		return
	}

	h.render(rw, http.StatusOK, "page", pageData{
		Dashboard: snap.View(),
		Form:      h.invites.Initial(viewer),
		CSRF:      h.csrfToken(rw, req),
		Viewer:    viewer,
	})
}

// PostPage submits the invite form and re-renders the page with the outcome.
func (h *Http) PostPage(rw http.ResponseWriter, req *http.Request) {
	viewer, ok := h.pageViewer(rw, req)
	if !ok {
		return
	}
	if !validCSRF(req) {
		log.Warningf("rejecting invite from %s: bad or missing csrf token", req.RemoteAddr)
		http.Error(rw, "invalid form token; reload the page and try again", http.StatusForbidden)
		return
	}
	snap, ok := h.pageDashboard(rw, req)
	if !ok {
		return
	}

	res := h.invites.Submit(req.Context(), invite.Form{Email: req.PostFormValue("email")}, viewer)
	h.render(rw, http.StatusOK, "page", pageData{
		Dashboard: snap.View(),
		Form:      res.Form,
		Success:   res.Success,
		Errors:    res.Errors,
		CSRF:      h.csrfToken(rw, req),
		Viewer:    viewer,
	})
}

// pageViewer redirects anonymous visitors to the login page when login is required.
func (h *Http) pageViewer(rw http.ResponseWriter, req *http.Request) (*user.User, bool) {
	viewer := h.Viewer(req)
	if h.opts.LoginRequired && !viewer.Authenticated() {
		http.Redirect(rw, req, h.opts.LoginRedirect, http.StatusFound)
		return nil, false
	}
	return viewer, true
}

func (h *Http) pageDashboard(rw http.ResponseWriter, req *http.Request) (*dashboard.Snapshot, bool) {
	snap, err := h.fetcher.Fetch(req.Context())
	if err != nil {
		log.Errorf("fetching dashboard for page: %s", err)
		h.render(rw, http.StatusBadGateway, "error", errorData{Message: adminMessage(err)})
		return nil, false
	}
	return snap, true
}

// csrfToken returns the visitor's form token, issuing a new cookie if they have none.
func (h *Http) csrfToken(rw http.ResponseWriter, req *http.Request) string {
	if c, err := req.Cookie(csrfCookie); err == nil && len(c.Value) == 2*csrfBytes {
		return c.Value
	}
	token := rand.RandHex(csrfBytes)
	http.SetCookie(rw, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func validCSRF(req *http.Request) bool {
	c, err := req.Cookie(csrfCookie)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(req.PostFormValue(csrfField))) == 1
}
