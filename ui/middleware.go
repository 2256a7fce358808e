package ui

import (
	"io/fs"
	"net/http"
	"time"

	"claimsportal/domain/claim"
	"claimsportal/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), s.requestLogger(), s.sessionMiddleware())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.log.Error("failed to open static files: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// sessionMiddleware restores the browser's session from its cookies and installs it on the request
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.NewStore(newCookieStorage(c, s.secure), session.WithLogger(s.log))
		if err := store.Restore(); err != nil {
			s.log.Warn("failed to restore session: %v", err)
		}
		c.Set(sessionKey, store)
		c.Request = c.Request.WithContext(session.WithStore(c.Request.Context(), store))
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Store {
	return session.FromContext(c.Request.Context())
}

// RequireAuth redirects anonymous visitors to the sign-in page
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, claim.RouteSignIn)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole sends identities of any other role back to their own home
func RequireRole(role claim.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionFrom(c).Identity()
		if !ok {
			c.Redirect(http.StatusFound, claim.RouteSignIn)
			c.Abort()
			return
		}
		if id.Role != role {
			c.Redirect(http.StatusFound, id.Role.Home())
			c.Abort()
			return
		}
		c.Next()
	}
}
