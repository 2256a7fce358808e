package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/errors"
	"claimsportal/ports"
)

const serviceName = "claims backend"

// Client talks to the claims backend over REST. It implements ports.ClaimsBackend.
// There is no retry and no timeout unless Options.Timeout is set.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenSource
	log        *internal.Logger
}

var _ ports.ClaimsBackend = (*Client)(nil)

// New creates a client from opts
func New(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		tokens:     opts.Tokens,
		log:        log,
	}, nil
}

// BaseURL returns the configured backend root
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	var out ports.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req ports.SignupRequest) (*ports.AuthResponse, error) {
	var out ports.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req ports.ProfileUpdate) (*ports.ProfileResponse, error) {
	var out ports.ProfileResponse
	if err := c.doJSON(ctx, http.MethodPut, "/auth/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClaims(ctx context.Context, company string) ([]claim.Claim, error) {
	path := "/claims"
	if company != "" {
		path += "?company=" + url.QueryEscape(company)
	}
	var out []claim.Claim
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetClaim fetches one claim. A 404 wraps core.ErrClaimNotFound around the backend error.
func (c *Client) GetClaim(ctx context.Context, id claim.ID) (*claim.Claim, error) {
	var out claim.Claim
	if err := c.doJSON(ctx, http.MethodGet, "/claims/"+url.PathEscape(id.String()), nil, &out); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", core.ErrClaimNotFound, err)
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteClaim(ctx context.Context, id claim.ID) (*ports.DeleteResult, error) {
	var out ports.DeleteResult
	if err := c.doJSON(ctx, http.MethodDelete, "/claims/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RAGQuery(ctx context.Context, query string) ([]claim.RAGMatch, error) {
	var out struct {
		Matches []claim.RAGMatch `json:"matches"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/rag/query", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

func (c *Client) Insurers(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/analytics/insurers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ranking(ctx context.Context) ([]claim.InsurerRanking, error) {
	var out []claim.InsurerRanking
	if err := c.doJSON(ctx, http.MethodGet, "/analytics/ranking", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Similarity(ctx context.Context) ([]claim.InsurerSimilarity, error) {
	var out []claim.InsurerSimilarity
	if err := c.doJSON(ctx, http.MethodGet, "/analytics/similarity", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessClaim posts the submission as multipart/form-data. Only Authorization is set by hand;
// the writer owns Content-Type so the boundary is correct.
func (c *Client) ProcessClaim(ctx context.Context, sub *ports.ClaimSubmission) (*ports.ProcessResult, error) {
	if sub == nil {
		return nil, errors.InvalidInput("submission is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"description", sub.Description},
		{"company", sub.Company},
		{"policy_type", sub.PolicyType},
		{"survey_result", string(sub.SurveyResult)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, errors.Wrap(err, "failed to encode form field "+f[0])
		}
	}
	for _, f := range sub.Files {
		part, err := mw.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode file "+f.Name)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, errors.Wrap(err, "failed to encode file "+f.Name)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/claim/process", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ports.ProcessResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func filePartHeader(f ports.Upload) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", core.NewRequestID().String())
	if c.tokens != nil {
		if t := c.tokens.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("backend request failed", "method", req.Method, "path", req.URL.Path, "error", err.Error())
		return errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ExternalServiceError(serviceName, err)
	}

	c.log.Debugw("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.ExternalServiceError(serviceName, fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err))
	}
	return nil
}
