package ports

import (
	"context"
	"encoding/json"

	"claimsportal/domain/claim"
)

// ClaimsBackend is the remote claims service
type ClaimsBackend interface {
	AuthBackend

	// ListClaims returns claims visible to the caller, optionally narrowed to one insurer
	ListClaims(ctx context.Context, company string) ([]claim.Claim, error)

	// GetClaim fetches one claim
	GetClaim(ctx context.Context, id claim.ID) (*claim.Claim, error)

	// DeleteClaim removes a claim on the backend
	DeleteClaim(ctx context.Context, id claim.ID) (*DeleteResult, error)

	// ProcessClaim uploads a new claim as multipart form data
	ProcessClaim(ctx context.Context, sub *ClaimSubmission) (*ProcessResult, error)

	// RAGQuery searches policy clauses
	RAGQuery(ctx context.Context, query string) ([]claim.RAGMatch, error)

	// Insurers lists insurer keys known to the backend
	Insurers(ctx context.Context) ([]string, error)

	// Ranking returns per-insurer strictness and risk scores
	Ranking(ctx context.Context) ([]claim.InsurerRanking, error)

	// Similarity returns pairwise insurer similarity
	Similarity(ctx context.Context) ([]claim.InsurerSimilarity, error)
}

// AuthBackend covers the account endpoints
type AuthBackend interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	UpdateProfile(ctx context.Context, req ProfileUpdate) (*ProfileResponse, error)
}

type LoginRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     claim.Role `json:"role,omitempty"`
}

type SignupRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Name        string     `json:"name"`
	Role        claim.Role `json:"role,omitempty"`
	CompanyName string     `json:"companyName,omitempty"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        claim.Identity `json:"user"`
}

// ProfileUpdate carries only the fields being changed
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

type ProfileResponse struct {
	Message string         `json:"message"`
	User    claim.Identity `json:"user"`
}

type DeleteResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ClaimSubmission is the multipart body of POST /claim/process
type ClaimSubmission struct {
	Description  string
	Company      string
	PolicyType   string
	SurveyResult json.RawMessage
	Files        []Upload
}

// Upload is one image file
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProcessResult is the outcome of claim processing
type ProcessResult struct {
	ClaimID       claim.ID        `json:"claim_id"`
	Status        string          `json:"status"`
	FinalDecision string          `json:"final_decision"`
	RiskLevel     string          `json:"risk_level"`
	ClausesUsed   json.RawMessage `json:"clauses_used,omitempty"`
	Explanation   string          `json:"explanation"`
	ImageResult   json.RawMessage `json:"image_result,omitempty"`
	MLResult      json.RawMessage `json:"ml_result,omitempty"`
}
