package main

import (
	"fmt"
	"time"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/errors"
	"claimsportal/internal/session"
	"claimsportal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

const companyOnlyMessage = "This portal is for Insurance Companies only. Please use the main login."

func (c *cli) newLoginCmd() *cobra.Command {
	var email, password string
	var company bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Long: `Sign in against the claims backend. The token and identity are saved only when the
backend accepts the credentials. The password is prompted for when --password is omitted.

Example: claimsctl login --email me@example.com
         claimsctl login --company --email claims@acme.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if password == "" {
				var err error
				if password, err = a.prompt("Password"); err != nil {
					return err
				}
			}
			role := claim.RoleUser
			if company {
				role = claim.RoleCompany
			}

			route, err := a.session.SignIn(cmd.Context(), a.backend, ports.LoginRequest{
				Email:    email,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return fmt.Errorf("auth failed: %s", api.Message(err))
			}

			id, _ := a.session.Identity()
			if company && !id.IsCompany() {
				_, _ = a.session.Logout()
				return errors.New(errors.CodeUnauthorized, companyOnlyMessage)
			}

			fmt.Fprintf(a.out, "✅ Signed in as %s (%s)\n", id.Name, id.Role)
			fmt.Fprintf(a.out, "Home: %s\n", route)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	cmd.Flags().BoolVar(&company, "company", false, "Sign in to the insurer portal")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) newSignupCmd() *cobra.Command {
	var email, password, name, companyName string
	var company bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create a policyholder account and sign in, or register an insurer account with --company.
Insurer accounts are not signed in; run "claimsctl login --company" afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if password == "" {
				var err error
				if password, err = a.prompt("Password"); err != nil {
					return err
				}
			}
			req := ports.SignupRequest{Email: email, Password: password, Name: name}
			if req.Name == "" {
				req.Name = "New User"
			}

			if company {
				req.Role = claim.RoleCompany
				req.Email = session.CompanyEmail(req.Email)
				req.CompanyName = companyName
				if _, err := a.backend.Signup(cmd.Context(), req); err != nil {
					return fmt.Errorf("signup failed: %s", api.Message(err))
				}
				fmt.Fprintf(a.out, "✅ Registration successful! Please sign in as %s.\n", req.Email)
				return nil
			}

			if _, err := a.session.SignUp(cmd.Context(), a.backend, req); err != nil {
				return fmt.Errorf("signup failed: %s", api.Message(err))
			}
			id, _ := a.session.Identity()
			fmt.Fprintf(a.out, "✅ Welcome, %s. You are signed in.\n", id.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().BoolVar(&company, "company", false, "Register an insurer account")
	cmd.Flags().StringVar(&companyName, "company-name", "", "Insurer key for --company, e.g. acme_general")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.app.out, "👋 Signed out")
			return nil
		},
	}
}

func (c *cli) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			id, err := a.session.RequireIdentity()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Name:    %s\n", id.Name)
			fmt.Fprintf(a.out, "Email:   %s\n", id.Email)
			fmt.Fprintf(a.out, "Role:    %s\n", id.Role)
			if id.Company != "" {
				fmt.Fprintf(a.out, "Company: %s\n", id.Company)
			}
			fmt.Fprintf(a.out, "Token:   %s\n", describeToken(a.session.Token(), a.clock.Now()))
			return nil
		},
	}
}

// describeToken reports the bearer token's expiry. The signature is not checked;
// only the backend can do that.
func describeToken(raw string, now time.Time) string {
	if raw == "" {
		return "none"
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return "opaque"
	}
	if claims.ExpiresAt == nil {
		return "no expiry"
	}
	exp := claims.ExpiresAt.Time.UTC()
	if !now.Before(exp) {
		return "expired " + exp.Format(time.RFC3339)
	}
	return fmt.Sprintf("expires %s (in %s)", exp.Format(time.RFC3339), exp.Sub(now).Round(time.Minute))
}

func (c *cli) newProfileCmd() *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the display name or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			id, err := a.session.UpdateProfile(cmd.Context(), a.backend, ports.ProfileUpdate{Name: name, Password: password})
			if err != nil {
				return fmt.Errorf("profile update failed: %s", api.Message(err))
			}
			fmt.Fprintf(a.out, "✅ Profile updated for %s\n", id.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	return cmd
}
