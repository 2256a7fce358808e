package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/config"
	"claimsportal/internal/views"
	"claimsportal/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// BackendFactory builds a claims backend that authenticates with tokens
type BackendFactory func(tokens ports.TokenSource) (ports.ClaimsBackend, error)

// Server is the server-rendered claims portal
type Server struct {
	router  *gin.Engine
	pages   map[string]*template.Template
	cfg     *config.Config
	backend BackendFactory
	drafts  *DraftStore
	clock   core.Clock
	log     *internal.Logger
	secure  bool
}

// Option configures a Server
type Option func(*Server)

// WithClock pins "today" for the claim wizard
func WithClock(c core.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithLogger(log *internal.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithBackend replaces the REST client factory
func WithBackend(f BackendFactory) Option {
	return func(s *Server) { s.backend = f }
}

// WithSecureCookies marks session cookies Secure, for deployments behind TLS
func WithSecureCookies() Option {
	return func(s *Server) { s.secure = true }
}

// NewServer creates a new web server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	s := &Server{
		router: gin.New(),
		cfg:    cfg,
		clock:  core.SystemClock{},
		log:    internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = restBackend(cfg, s.log)
	}
	s.drafts = NewDraftStore(s.clock, s.log)

	pages, err := parsePages(embeddedFiles, cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	s.pages = pages

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// restBackend shares one http.Client between the per-request API clients
func restBackend(cfg *config.Config, log *internal.Logger) BackendFactory {
	hc := &http.Client{Timeout: cfg.API.Timeout}
	return func(tokens ports.TokenSource) (ports.ClaimsBackend, error) {
		return api.New(api.Options{
			BaseURL:    cfg.API.BaseURL,
			HTTPClient: hc,
			Tokens:     tokens,
			Logger:     log,
		})
	}
}

func templateFuncs(baseURL string) template.FuncMap {
	return template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"percent":     views.Percent,
		"date":        views.FormatDate,
		"datetime":    views.FormatDateTime,
		"insurer":     views.InsurerLabel,
		"shortID":     views.ShortID,
		"riskBand":    views.RiskBand,
		"riskVariant": views.RiskVariant,
		"markdown":    views.RenderMarkdown,
		"statusLabel": func(s claim.Status) string { return s.Label() },
		"statusColor": views.StatusColor,
		"asset":       func(p string) string { return views.AssetURL(baseURL, p) },
		"lower":       strings.ToLower,
		"mul100":      func(x float64) string { return fmt.Sprintf("%.1f", x*100) },
		"hasPart":     hasPart,
		"yesnoField":  func(field, label string, d wizardData) yesNoField { return yesNoField{field, label, d} },
	}
}

// parsePages builds one template set per page so every page can define its own "content" block
func parsePages(fsys fs.FS, baseURL string) (map[string]*template.Template, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		name := path.Base(file)
		if name == "layout.html" || name == "partials.html" {
			continue
		}
		t, err := template.New(name).Funcs(templateFuncs(baseURL)).ParseFS(fsys, "templates/layout.html", "templates/partials.html", file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/healthz", s.handleHealth)
	r.GET("/", s.handleHome)

	r.GET("/sign-in", s.handleSignInPage(claim.RoleUser))
	r.POST("/sign-in", s.handleSignIn(claim.RoleUser))
	r.GET("/sign-up", s.handleSignUpPage(claim.RoleUser))
	r.POST("/sign-up", s.handleSignUp(claim.RoleUser))
	r.GET("/company/sign-in", s.handleSignInPage(claim.RoleCompany))
	r.POST("/company/sign-in", s.handleSignIn(claim.RoleCompany))
	r.GET("/company/sign-up", s.handleSignUpPage(claim.RoleCompany))
	r.POST("/company/sign-up", s.handleSignUp(claim.RoleCompany))
	r.GET("/logout", s.handleLogout)
	r.POST("/logout", s.handleLogout)

	dash := r.Group("/dashboard", RequireAuth())
	{
		dash.GET("", s.handleDashboard)
		dash.GET("/claims", s.handleClaimsList)
		dash.GET("/claims/:id", s.handleClaimDetail)
		dash.POST("/claims/:id/delete", s.handleDeleteClaim)
		dash.POST("/claims/:id/rag", s.handleRAGQuery)
		dash.GET("/new-claim", s.handleWizard)
		dash.POST("/new-claim", s.handleWizardAction)
		dash.GET("/profile", s.handleProfile)
		dash.POST("/profile", s.handleProfileUpdate)

		company := dash.Group("/company", RequireRole(claim.RoleCompany))
		company.GET("", s.handleCompanyDashboard)
		company.GET("/customers", s.handleCustomers)
		company.GET("/analytics", s.handleAnalytics)
		company.GET("/export", s.handleExport)
	}

	r.NoRoute(func(c *gin.Context) { c.Redirect(http.StatusFound, "/") })
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting claims portal UI on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type yesNoField struct {
	Field string
	Label string
	Data  wizardData
}

func hasPart(parts []string, p claim.DamagePart) bool {
	for _, existing := range parts {
		if existing == string(p) {
			return true
		}
	}
	return false
}
