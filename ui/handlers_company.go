package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"claimsportal/domain/claim"
	"claimsportal/internal/views"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type customersData struct {
	Customers []views.Customer
	Total     int
	Query     string
}

type analyticsData struct {
	Tab        string
	Company    string
	Stats      views.Stats
	Statuses   []views.Slice
	Vehicles   []views.Slice
	Monthly    []views.MonthCount
	Benchmarks *views.Benchmarks
}

func (s *Server) handleCompanyDashboard(c *gin.Context) {
	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	q := c.Query("q")
	s.renderTemplate(c, http.StatusOK, "company.html", withFlash(c, page{
		Title: "Company Dashboard",
		Data: dashboardData{
			Stats:  views.DashboardStats(claims),
			Claims: views.FilterClaims(claims, q),
			Query:  q,
			Return: "/dashboard/company",
		},
	}))
}

func (s *Server) handleCustomers(c *gin.Context) {
	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	roster := views.BuildRoster(claims)
	q := c.Query("q")
	s.renderTemplate(c, http.StatusOK, "customers.html", page{
		Title: "Customer Base",
		Data:  customersData{Customers: views.FilterRoster(roster, q), Total: len(roster), Query: q},
	})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	id, _ := sessionFrom(c).Identity()
	d := analyticsData{Tab: c.DefaultQuery("tab", "overview"), Company: id.Company}
	if d.Company == "" {
		d.Company = "Global"
	}
	p := page{Title: "Analytics Dashboard", Data: &d}

	if d.Tab == "benchmarks" {
		backend, err := s.backendFor(c)
		if err != nil {
			s.renderError(c, err)
			return
		}
		d.Benchmarks, err = views.FetchBenchmarks(c.Request.Context(), backend)
		if err != nil {
			s.log.Warn("failed to load benchmarks: %v", err)
			p.Alert = "Failed to load benchmarks"
		}
		s.renderTemplate(c, http.StatusOK, "analytics.html", p)
		return
	}

	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	valid := views.Reportables(claims)
	d.Tab = "overview"
	d.Stats = views.DashboardStats(valid)
	d.Statuses = views.StatusDistribution(valid)
	d.Vehicles = views.VehicleDistribution(valid)
	d.Monthly = views.MonthlyTrend(valid)
	s.renderTemplate(c, http.StatusOK, "analytics.html", p)
}

// handleExport streams the visible claims as an xlsx workbook
func (s *Server) handleExport(c *gin.Context) {
	claims, err := s.listClaims(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := views.ExportClaims(&buf, claims); err != nil {
		s.renderError(c, err)
		return
	}
	id, _ := sessionFrom(c).Identity()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(id, s.clock.Now().Format("20060102"))))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func exportFilename(id claim.Identity, day string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, id.Company)
	if name == "" {
		name = "all"
	}
	return "claims-" + name + "-" + day + ".xlsx"
}
