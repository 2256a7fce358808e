package ui

import (
	"net/http"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/session"
	"claimsportal/ports"

	"github.com/gin-gonic/gin"
)

const (
	msgCompanyOnly      = "This portal is for Insurance Companies only. Please use the main login."
	msgCompanyAuthFail  = "Auth failed. Try again."
	msgCompanySignup    = "Signup failed"
	msgRegistered       = "Registration successful! Please sign in."
	defaultSignupName   = "New User"
	registeredQueryFlag = "registered"
)

type authForm struct {
	Role        claim.Role
	SignUp      bool
	Email       string
	Name        string
	CompanyName string
	Action      string
	SwitchURL   string
}

func (f authForm) Company() bool { return f.Role == claim.RoleCompany }

func newAuthForm(role claim.Role, signUp bool) authForm {
	f := authForm{Role: role, SignUp: signUp}
	prefix := ""
	if role == claim.RoleCompany {
		prefix = "/company"
	}
	if signUp {
		f.Action, f.SwitchURL = prefix+"/sign-up", prefix+"/sign-in"
	} else {
		f.Action, f.SwitchURL = prefix+"/sign-in", prefix+"/sign-up"
	}
	return f
}

// backendFor returns a REST client that authenticates as the request's session
func (s *Server) backendFor(c *gin.Context) (ports.ClaimsBackend, error) {
	return s.backend(sessionFrom(c))
}

func (s *Server) handleHome(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "home.html", page{Title: "Motor claims, assessed in minutes"})
}

func (s *Server) handleSignInPage(role claim.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := sessionFrom(c).Identity(); ok {
			c.Redirect(http.StatusFound, id.Role.Home())
			return
		}
		p := page{Title: "Sign in", Data: newAuthForm(role, false)}
		if c.Query(registeredQueryFlag) != "" {
			p.Notice = msgRegistered
		}
		s.renderTemplate(c, http.StatusOK, "auth.html", p)
	}
}

func (s *Server) handleSignUpPage(role claim.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.renderTemplate(c, http.StatusOK, "auth.html", page{Title: "Create account", Data: newAuthForm(role, true)})
	}
}

func (s *Server) handleSignIn(role claim.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		form := newAuthForm(role, false)
		form.Email = strings.TrimSpace(c.PostForm("email"))

		backend, err := s.backendFor(c)
		if err != nil {
			s.renderError(c, err)
			return
		}

		store := sessionFrom(c)
		route, err := store.SignIn(c.Request.Context(), backend, ports.LoginRequest{
			Email:    form.Email,
			Password: c.PostForm("password"),
			Role:     role,
		})
		if err != nil {
			alert := "Auth failed: " + api.Message(err)
			if role == claim.RoleCompany {
				alert = msgCompanyAuthFail
			}
			s.renderTemplate(c, http.StatusUnauthorized, "auth.html", page{Title: "Sign in", Alert: alert, Data: form})
			return
		}

		if id, _ := store.Identity(); role == claim.RoleCompany && !id.IsCompany() {
			_, _ = store.Logout()
			s.renderTemplate(c, http.StatusForbidden, "auth.html", page{Title: "Sign in", Alert: msgCompanyOnly, Data: form})
			return
		}
		c.Redirect(http.StatusSeeOther, route)
	}
}

func (s *Server) handleSignUp(role claim.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		form := newAuthForm(role, true)
		form.Email = strings.TrimSpace(c.PostForm("email"))
		form.Name = strings.TrimSpace(c.PostForm("name"))
		form.CompanyName = strings.TrimSpace(c.PostForm("companyName"))

		backend, err := s.backendFor(c)
		if err != nil {
			s.renderError(c, err)
			return
		}

		req := ports.SignupRequest{
			Email:    form.Email,
			Password: c.PostForm("password"),
			Name:     form.Name,
		}
		if req.Name == "" {
			req.Name = defaultSignupName
		}

		// insurer accounts register here and sign in separately
		if role == claim.RoleCompany {
			req.Role = claim.RoleCompany
			req.Email = session.CompanyEmail(req.Email)
			req.CompanyName = form.CompanyName
			if _, err := backend.Signup(c.Request.Context(), req); err != nil {
				s.log.Warnw("company sign up rejected", "email", req.Email, "error", api.Message(err))
				s.renderTemplate(c, http.StatusBadRequest, "auth.html", page{Title: "Create account", Alert: msgCompanySignup, Data: form})
				return
			}
			c.Redirect(http.StatusSeeOther, "/company/sign-in?"+registeredQueryFlag+"=1")
			return
		}

		route, err := sessionFrom(c).SignUp(c.Request.Context(), backend, req)
		if err != nil {
			s.renderTemplate(c, http.StatusBadRequest, "auth.html", page{Title: "Create account", Alert: "Signup failed: " + api.Message(err), Data: form})
			return
		}
		c.Redirect(http.StatusSeeOther, route)
	}
}

func (s *Server) handleLogout(c *gin.Context) {
	route, err := sessionFrom(c).Logout()
	if err != nil {
		s.log.Warn("logout failed to clear storage: %v", err)
	}
	c.Redirect(http.StatusSeeOther, route)
}

// renderError shows a generic failure page for errors with no better home
func (s *Server) renderError(c *gin.Context, err error) {
	status := api.StatusCode(err)
	if status < 400 {
		status = http.StatusBadGateway
	}
	s.log.Warn("request failed: %v", err)
	s.renderTemplate(c, status, "error.html", page{Title: "Something went wrong", Alert: api.Message(err)})
}
