package session

import (
	"context"
	"strings"

	"claimsportal/domain/claim"
	"claimsportal/internal/errors"
	"claimsportal/ports"
)

// SignIn authenticates against the backend. The token and identity are persisted only on success.
func (s *Store) SignIn(ctx context.Context, backend ports.AuthBackend, req ports.LoginRequest) (string, error) {
	resp, err := backend.Login(ctx, req)
	if err != nil {
		s.log.Warnw("sign in rejected", "email", req.Email, "role", string(req.Role))
		return "", err
	}
	return s.establish(resp)
}

// SignUp registers a new account and signs it in.
// Insurer accounts get a "company_" email prefix unless the address already mentions company.
func (s *Store) SignUp(ctx context.Context, backend ports.AuthBackend, req ports.SignupRequest) (string, error) {
	if req.Role == claim.RoleCompany {
		req.Email = CompanyEmail(req.Email)
	}
	resp, err := backend.Signup(ctx, req)
	if err != nil {
		return "", err
	}
	return s.establish(resp)
}

// CompanyEmail applies the insurer-account email convention
func CompanyEmail(email string) string {
	if strings.Contains(strings.ToLower(email), "company") {
		return email
	}
	return "company_" + email
}

func (s *Store) establish(resp *ports.AuthResponse) (string, error) {
	if resp == nil || !resp.User.Valid() {
		return "", errors.ExternalServiceError("claims backend", errors.New(errors.CodeInvalidInput, "login response carried no usable user"))
	}
	if err := s.SetToken(resp.AccessToken); err != nil {
		return "", err
	}
	return s.Login(resp.User)
}

// UpdateProfile changes the display name and/or password, then re-establishes the identity
// with the new name. It returns the refreshed identity.
func (s *Store) UpdateProfile(ctx context.Context, backend ports.AuthBackend, upd ports.ProfileUpdate) (claim.Identity, error) {
	current, err := s.RequireIdentity()
	if err != nil {
		return claim.Identity{}, err
	}
	if strings.TrimSpace(upd.Name) == "" && upd.Password == "" {
		return current, errors.InvalidInput("nothing to update")
	}

	resp, err := backend.UpdateProfile(ctx, upd)
	if err != nil {
		return claim.Identity{}, err
	}

	next := current
	if resp != nil && resp.User.Name != "" {
		next.Name = resp.User.Name
	} else if upd.Name != "" {
		next.Name = upd.Name
	}
	if _, err := s.Login(next); err != nil {
		return claim.Identity{}, err
	}
	return next, nil
}
