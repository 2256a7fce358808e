package ui

import (
	"net/http"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/ports"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleProfile(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "profile.html", withFlash(c, page{Title: "Profile"}))
}

func (s *Server) handleProfileUpdate(c *gin.Context) {
	backend, err := s.backendFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	upd := ports.ProfileUpdate{
		Name:     strings.TrimSpace(c.PostForm("name")),
		Password: c.PostForm("password"),
	}
	if _, err := sessionFrom(c).UpdateProfile(c.Request.Context(), backend, upd); err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "profile.html", page{Title: "Profile", Alert: api.Message(err)})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/profile?notice=updated")
}
