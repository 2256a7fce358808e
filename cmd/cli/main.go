package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"claimsportal/adapters/api"
	"claimsportal/adapters/storage"
	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/config"
	"claimsportal/internal/errors"
	"claimsportal/internal/session"
	"claimsportal/ports"

	"github.com/spf13/cobra"
)

// app is what every command runs against
type app struct {
	cfg     *config.Config
	log     *internal.Logger
	session *session.Store
	backend ports.ClaimsBackend
	clock   core.Clock
	in      *bufio.Reader
	out     io.Writer
}

type setupFunc func(cmd *cobra.Command) (*app, error)

type cli struct {
	setup setupFunc
	app   *app
}

func main() {
	if err := newRootCmd(defaultSetup).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(setup setupFunc) *cobra.Command {
	c := &cli{setup: setup}

	rootCmd := &cobra.Command{
		Use:   "claimsctl",
		Short: "Motor claims portal from the command line",
		Long: `claimsctl talks to the claims backend with the same session the web portal uses.

The backend address comes from CLAIMS_API_BASE_URL (default http://127.0.0.1:8000).
The session is kept under CLAIMS_STATE_DIR (default ~/.claimsportal).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	rootCmd.AddCommand(
		c.newLoginCmd(),
		c.newSignupCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newProfileCmd(),
		c.newClaimsCmd(),
		c.newRAGCmd(),
		c.newWizardCmd(),
		c.newCustomersCmd(),
		c.newAnalyticsCmd(),
		c.newExportCmd(),
	)
	return rootCmd
}

// defaultSetup wires the file-backed session and the REST client from configuration
func defaultSetup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Mode)
	internal.DefaultLogger = logger

	store, err := storage.NewFileStore(cfg.Storage.StateDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session storage")
	}
	sess := session.NewStore(store, session.WithLogger(logger))
	if err := sess.Restore(); err != nil {
		return nil, err
	}

	backend, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  sess,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     logger,
		session: sess,
		backend: backend,
		clock:   core.SystemClock{},
		in:      bufio.NewReader(cmd.InOrStdin()),
		out:     cmd.OutOrStdout(),
	}, nil
}

// prompt asks for one line of input
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.InvalidInput("input ended before " + strings.ToLower(label) + " was given")
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y or yes is no
func (a *app) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// requireCompany guards the insurer-only commands
func (a *app) requireCompany() (claim.Identity, error) {
	id, err := a.session.RequireIdentity()
	if err != nil {
		return id, err
	}
	if !id.IsCompany() {
		return id, errors.WithCode(errors.CodeUnauthorized, core.ErrForbiddenRole)
	}
	return id, nil
}

// listClaims fetches the caller's claims; insurer accounts only see their own company
func (a *app) listClaims(cmd *cobra.Command) ([]claim.Claim, error) {
	id, err := a.session.RequireIdentity()
	if err != nil {
		return nil, err
	}
	company := ""
	if id.IsCompany() {
		company = id.Company
	}
	return a.backend.ListClaims(cmd.Context(), company)
}
