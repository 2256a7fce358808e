package ui

import (
	"bytes"
	"net/http"

	"claimsportal/domain/claim"

	"github.com/gin-gonic/gin"
)

// page is the data every template receives
type page struct {
	Title    string
	Identity *claim.Identity
	Alert    string
	Notice   string
	Data     interface{}
}

// renderTemplate executes a page into a buffer first so a template error never sends a half page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, p page) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.log.Error("unknown template %s", name)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": "unknown template " + name})
		return
	}
	if id, ok := sessionFrom(c).Identity(); ok {
		p.Identity = &id
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		s.log.Error("template error for %s: %v (data %T)", name, err, p.Data)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.log.Warn("error writing template response: %v", err)
	}
}
