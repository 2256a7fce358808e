package ui

import (
	"net/http"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/views"

	"github.com/gin-gonic/gin"
)

// flash texts selected by query code, so no request text reaches the page verbatim
var (
	alertTexts = map[string]string{
		"delete-failed": views.ErrDeleteFailed.Error(),
	}
	noticeTexts = map[string]string{
		"deleted": "Claim deleted",
		"updated": "Profile updated",
	}
)

func withFlash(c *gin.Context, p page) page {
	if msg, ok := alertTexts[c.Query("alert")]; ok && p.Alert == "" {
		p.Alert = msg
	}
	if msg, ok := noticeTexts[c.Query("notice")]; ok && p.Notice == "" {
		p.Notice = msg
	}
	return p
}

type dashboardData struct {
	Stats  views.Stats
	Claims []claim.Claim
	Query  string
	Return string
}

type claimDetailData struct {
	Claim          *claim.Claim
	Explanation    string
	VisualAnalysis string
	Evidence       []string
	Query          string
	Results        []claim.RAGMatch
	Searched       bool
	Return         string
}

// listClaims fetches the caller's claims; insurer accounts only see their own company
func (s *Server) listClaims(c *gin.Context) ([]claim.Claim, error) {
	backend, err := s.backendFor(c)
	if err != nil {
		return nil, err
	}
	id, _ := sessionFrom(c).Identity()
	company := ""
	if id.IsCompany() {
		company = id.Company
	}
	return backend.ListClaims(c.Request.Context(), company)
}

func (s *Server) handleDashboard(c *gin.Context) {
	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "dashboard.html", withFlash(c, page{
		Title: "Dashboard",
		Data:  dashboardData{Stats: views.DashboardStats(claims), Claims: claims, Return: "/dashboard"},
	}))
}

func (s *Server) handleClaimsList(c *gin.Context) {
	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	q := c.Query("q")
	s.renderTemplate(c, http.StatusOK, "claims.html", withFlash(c, page{
		Title: "My Claims",
		Data:  dashboardData{Claims: views.FilterClaims(claims, q), Query: q, Return: "/dashboard/claims"},
	}))
}

func (s *Server) loadClaimDetail(c *gin.Context) (*claimDetailData, error) {
	backend, err := s.backendFor(c)
	if err != nil {
		return nil, err
	}
	cl, err := backend.GetClaim(c.Request.Context(), claim.ID(c.Param("id")))
	if err != nil {
		return nil, err
	}

	d := &claimDetailData{Claim: cl, Return: "/dashboard/claims/" + c.Param("id")}
	if a := cl.AIAnalysis; a != nil {
		text := views.ExplanationText(a)
		parsed := views.ParseExplanation(text)
		d.Explanation = parsed.Summary
		d.VisualAnalysis = a.VisualAnalysis
		if d.VisualAnalysis == "" {
			d.VisualAnalysis = parsed.VisualAnalysis
		}
		d.Evidence = a.EvidenceList
		if len(d.Evidence) == 0 {
			d.Evidence = parsed.Evidence
		}
	}
	return d, nil
}

func (s *Server) handleClaimDetail(c *gin.Context) {
	d, err := s.loadClaimDetail(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "claim.html", withFlash(c, page{Title: "Claim " + c.Param("id"), Data: d}))
}

func (s *Server) handleRAGQuery(c *gin.Context) {
	q := strings.TrimSpace(c.PostForm("query"))
	if q == "" {
		c.Redirect(http.StatusSeeOther, "/dashboard/claims/"+c.Param("id"))
		return
	}

	d, err := s.loadClaimDetail(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	backend, err := s.backendFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	p := page{Title: "Claim " + c.Param("id"), Data: d}
	d.Query, d.Searched = q, true
	d.Results, err = backend.RAGQuery(c.Request.Context(), q)
	if err != nil {
		p.Alert = api.Message(err)
	}
	s.renderTemplate(c, http.StatusOK, "claim.html", p)
}

// handleDeleteClaim removes the claim on the backend first; the list only changes once that succeeds
func (s *Server) handleDeleteClaim(c *gin.Context) {
	back := safeReturn(c.PostForm("return"), "/dashboard")

	backend, err := s.backendFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	id := claim.ID(c.Param("id"))
	if _, err := views.DeleteClaim(c.Request.Context(), backend, nil, id); err != nil {
		s.log.Warn("delete of claim %s failed: %v", id, err)
		c.Redirect(http.StatusSeeOther, back+"?alert=delete-failed")
		return
	}
	s.log.Infow("claim deleted", "claim_id", id.String())
	c.Redirect(http.StatusSeeOther, back+"?notice=deleted")
}

// safeReturn only accepts local dashboard paths
func safeReturn(target, fallback string) string {
	if strings.HasPrefix(target, "/dashboard") && !strings.ContainsAny(target, "?#\\") && !strings.HasPrefix(target, "//") {
		return target
	}
	return fallback
}
