package ui

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/config"
	"claimsportal/ports"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = core.FixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

const claimsJSON = `[
	{"id": 1, "userId": "5", "userName": "Asha", "status": "APPROVED", "createdAt": "2025-02-01T10:00:00", "policyNumber": "POL-1",
	 "vehicleDetails": {"registrationNumber": "KA01AB1234", "insurerName": "acme_general", "vehicleType": "Four Wheeler", "carAge": 3},
	 "aiAnalysis": {"confidence": 0.9, "damagePercent": 20, "approvalProbability": 0.8, "explanations": "Minor dent"}},
	{"id": 2, "userId": "5", "userName": "Asha", "status": "REQUIRES_REVIEW", "createdAt": "2025-02-15T09:30:00", "policyNumber": "POL-2",
	 "vehicleDetails": {"registrationNumber": "KA02CD5678", "insurerName": "acme_general", "vehicleType": "Two Wheeler", "carAge": 1}}
]`

// fakeBackend is an in-process claims API
type fakeBackend struct {
	mu        sync.Mutex
	companies []string
	deleted   []string
	signups   []ports.SignupRequest
	processed int
	tokens    []string

	// processFailure, when set, is the detail /claim/process answers 503 with
	processFailure string
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body ports.LoginRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		switch body.Email {
		case "user@example.com":
			writeJSON(w, http.StatusOK, `{"access_token":"user-token","token_type":"bearer","user":{"id":5,"name":"Asha","email":"user@example.com","role":"user"}}`)
		case "insurer@example.com":
			writeJSON(w, http.StatusOK, `{"access_token":"company-token","token_type":"bearer","user":{"id":9,"name":"Acme","email":"insurer@example.com","role":"company","company":"acme_general"}}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
		}
	})

	r.Post("/auth/signup", func(w http.ResponseWriter, req *http.Request) {
		var body ports.SignupRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		f.mu.Lock()
		f.signups = append(f.signups, body)
		f.mu.Unlock()
		if body.Email == "taken@example.com" {
			writeJSON(w, http.StatusBadRequest, `{"detail":"Email already registered"}`)
			return
		}
		role := string(body.Role)
		if role == "" {
			role = "user"
		}
		writeJSON(w, http.StatusOK, `{"access_token":"new-token","token_type":"bearer","user":{"id":12,"name":"`+body.Name+`","email":"`+body.Email+`","role":"`+role+`"}}`)
	})

	r.Get("/claims", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.companies = append(f.companies, req.URL.Query().Get("company"))
		f.tokens = append(f.tokens, req.Header.Get("Authorization"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, claimsJSON)
	})

	r.Get("/claims/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": `+chi.URLParam(req, "id")+`, "userId": "5", "status": "APPROVED", "createdAt": "2025-02-01T10:00:00",
			"aiAnalysis": {"confidence": 0.9, "damagePercent": 20, "explanations": "## Explanation\nMinor dent on the bumper.\n## Evidence Used\n- photo 1\n- photo 2"}}`)
	})

	r.Delete("/claims/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if id == "99" {
			writeJSON(w, http.StatusInternalServerError, `{"detail":"database unavailable"}`)
			return
		}
		f.mu.Lock()
		f.deleted = append(f.deleted, id)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"status":"success","message":"Claim deleted"}`)
	})

	r.Post("/rag/query", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, `{"matches":[{"text":"Own damage is covered.","source":"policy.pdf","page":3,"score":0.91}]}`)
	})

	r.Get("/analytics/insurers", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, `["acme_general","beta_insure"]`)
	})
	r.Get("/analytics/ranking", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, `[{"insurer":"acme_general","total_clauses":40,"exclusion_count":12,"condition_count":8,"strictness_score":0.3,"risk_score":55}]`)
	})
	r.Get("/analytics/similarity", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, `[{"insurer_a":"acme_general","insurer_b":"beta_insure","similarity_score":0.72}]`)
	})

	r.Post("/claim/process", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"detail":"bad form"}`)
			return
		}
		f.mu.Lock()
		failure := f.processFailure
		f.processed++
		f.mu.Unlock()
		if failure != "" {
			writeJSON(w, http.StatusServiceUnavailable, `{"detail":"`+failure+`"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"claim_id": 77, "status": "processed", "final_decision": "APPROVED", "risk_level": "low",
			"ml_result": {"damage_detected": true, "severity": "minor", "confidence": 0.8, "claimability": "Claimable"}}`)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fb := &fakeBackend{}
	backendSrv := httptest.NewServer(fb.router())
	t.Cleanup(backendSrv.Close)

	cfg := &config.Config{
		API:    config.APIConfig{BaseURL: backendSrv.URL, Timeout: 5 * time.Second},
		Server: config.ServerConfig{GinMode: gin.TestMode},
	}
	s, err := NewServer(cfg, WithClock(today), WithLogger(internal.NewNopLogger()))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, fb
}

// newBrowser keeps cookies and reports redirects instead of following them
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, b *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := b.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func post(t *testing.T, b *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := b.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func signIn(t *testing.T, b *http.Client, base, email string) {
	t.Helper()
	resp, _ := post(t, b, base+"/sign-in", url.Values{"email": {email}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, newBrowser(t), srv.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestProtectedPagesRedirectAnonymousVisitors(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)

	for _, path := range []string{"/dashboard", "/dashboard/claims", "/dashboard/new-claim", "/dashboard/company"} {
		resp, _ := get(t, b, srv.URL+path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/sign-in", resp.Header.Get("Location"), path)
	}
}

func TestUnknownRouteRedirectsHome(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := get(t, newBrowser(t), srv.URL+"/nope")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestSignInRoutesByRole(t *testing.T) {
	srv, fb := newTestServer(t)

	user := newBrowser(t)
	resp, _ := post(t, user, srv.URL+"/sign-in", url.Values{"email": {"user@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body := get(t, user, srv.URL+"/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Recent Claims")
	assert.Contains(t, body, "Asha")

	company := newBrowser(t)
	resp, _ = post(t, company, srv.URL+"/company/sign-in", url.Values{"email": {"insurer@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/company", resp.Header.Get("Location"))

	resp, body = get(t, company, srv.URL+"/dashboard/company")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Incoming Claims")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"", "acme_general"}, fb.companies)
	assert.Equal(t, []string{"Bearer user-token", "Bearer company-token"}, fb.tokens)
}

func TestSignInPageRedirectsWhenAlreadySignedIn(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, _ := get(t, b, srv.URL+"/sign-in")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestSignInFailureShowsBackendMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)

	resp, body := post(t, b, srv.URL+"/sign-in", url.Values{"email": {"nobody@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Auth failed: Invalid credentials")

	resp, body = post(t, b, srv.URL+"/company/sign-in", url.Values{"email": {"nobody@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, msgCompanyAuthFail)

	resp, _ = get(t, b, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestCompanyPortalRejectsUserAccounts(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)

	resp, body := post(t, b, srv.URL+"/company/sign-in", url.Values{"email": {"user@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, msgCompanyOnly)

	// the rejected session was cleared
	resp, _ = get(t, b, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
}

func TestCompanyPagesRedirectUsers(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	for _, path := range []string{"/dashboard/company", "/dashboard/company/customers", "/dashboard/company/export"} {
		resp, _ := get(t, b, srv.URL+path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"), path)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, _ := post(t, b, srv.URL+"/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))

	resp, _ = get(t, b, srv.URL+"/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestUserSignUpSignsIn(t *testing.T) {
	srv, fb := newTestServer(t)
	b := newBrowser(t)

	resp, _ := post(t, b, srv.URL+"/sign-up", url.Values{"email": {"new@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	fb.mu.Lock()
	require.Len(t, fb.signups, 1)
	assert.Equal(t, defaultSignupName, fb.signups[0].Name)
	fb.mu.Unlock()

	resp, body := post(t, newBrowser(t), srv.URL+"/sign-up", url.Values{"email": {"taken@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Signup failed: Email already registered")
}

func TestCompanySignUpRequiresSeparateSignIn(t *testing.T) {
	srv, fb := newTestServer(t)
	b := newBrowser(t)

	resp, _ := post(t, b, srv.URL+"/company/sign-up", url.Values{
		"email":       {"claims@acme.com"},
		"password":    {"pw"},
		"name":        {"Acme Claims"},
		"companyName": {"acme_general"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/company/sign-in?registered=1", resp.Header.Get("Location"))

	fb.mu.Lock()
	require.Len(t, fb.signups, 1)
	assert.Equal(t, "company_claims@acme.com", fb.signups[0].Email)
	assert.Equal(t, "acme_general", fb.signups[0].CompanyName)
	fb.mu.Unlock()

	// registration does not start a session
	resp, body := get(t, b, srv.URL+"/company/sign-in?registered=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, msgRegistered)
}

func TestDeleteClaimRedirects(t *testing.T) {
	srv, fb := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, _ := post(t, b, srv.URL+"/dashboard/claims/1/delete", url.Values{"return": {"/dashboard/claims"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/claims?notice=deleted", resp.Header.Get("Location"))

	resp, _ = post(t, b, srv.URL+"/dashboard/claims/99/delete", url.Values{"return": {"https://evil.example"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard?alert=delete-failed", resp.Header.Get("Location"))

	_, body := get(t, b, srv.URL+"/dashboard?alert=delete-failed")
	assert.Contains(t, body, "Failed to delete claim")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"1"}, fb.deleted)
}

func TestClaimDetailAndRAGSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, body := get(t, b, srv.URL+"/dashboard/claims/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Minor dent on the bumper.")
	assert.Contains(t, body, "<li>photo 1</li>")

	resp, body = post(t, b, srv.URL+"/dashboard/claims/1/rag", url.Values{"query": {"own damage"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Own damage is covered.")
	assert.Contains(t, body, "policy.pdf, p. 3")
}

func TestClaimsSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, body := get(t, b, srv.URL+"/dashboard/claims?q=cd5678")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "KA02CD5678")
	assert.NotContains(t, body, "KA01AB1234")
}

func TestCompanyCustomersAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	resp, _ := post(t, b, srv.URL+"/company/sign-in", url.Values{"email": {"insurer@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := get(t, b, srv.URL+"/dashboard/company/customers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "1 Customer")

	resp, body = get(t, b, srv.URL+"/dashboard/company/analytics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Status Distribution")
	assert.Contains(t, body, "Feb 2025")

	resp, body = get(t, b, srv.URL+"/dashboard/company/analytics?tab=benchmarks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Strictness Leaderboard")
	assert.Contains(t, body, "High")
}

func TestExportServesWorkbook(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	resp, _ := post(t, b, srv.URL+"/company/sign-in", url.Values{"email": {"insurer@example.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := get(t, b, srv.URL+"/dashboard/company/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="claims-acme_general-20250310.xlsx"`, resp.Header.Get("Content-Disposition"))
	// xlsx is a zip archive
	assert.True(t, strings.HasPrefix(body, "PK"))
}

func TestProfileUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, body := post(t, b, srv.URL+"/dashboard/profile", url.Values{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "nothing to update")
}

// wizardSteps are valid answers for stages 1 to 3
var wizardSteps = []url.Values{
	{"accidentDate": {"2025-03-01"}, "accidentTime": {"10:30"}, "locationType": {"city"}},
	{"policyNumber": {"POL-12345"}, "policyExpiryDate": {"2025-03-11"}, "carAge": {"4"}, "registrationNumber": {"KA01AB1234"}, "insurerName": {"acme_general"}, "vehicleType": {"Four Wheeler"}},
	{"accidentType": {"collision"}, "damageParts": {"Damage Front"}, "previousClaims": {"0"}, "policeReport": {"yes"}, "driverAtFault": {"no"}, "driverAge": {"30"}, "driverLicenseValid": {"yes"}, "alcoholIntoxicated": {"no"}},
}

// stageForm builds a post the way the page for stage renders it
func stageForm(stage int, action string, values url.Values) url.Values {
	form := url.Values{"stage": {strconv.Itoa(stage)}, "action": {action}}
	for k, v := range values {
		form[k] = v
	}
	return form
}

// completeFormStages fills stages 1 to 3, leaving the wizard on evidence
func completeFormStages(t *testing.T, b *http.Client, wizardURL string) {
	t.Helper()
	for i, values := range wizardSteps {
		resp, body := post(t, b, wizardURL, stageForm(i+1, "next", values))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, "stage %d: %s", i+1, body)
	}
}

// advanceToReview completes every stage up to review with two images attached
func advanceToReview(t *testing.T, b *http.Client, wizardURL string) {
	t.Helper()
	get(t, b, wizardURL)
	completeFormStages(t, b, wizardURL)
	resp := uploadImages(t, b, wizardURL, "front.jpg", "rear.jpg")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = post(t, b, wizardURL, stageForm(4, "next", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestWizardFlow(t *testing.T) {
	srv, fb := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")
	wizardURL := srv.URL + wizardPath

	resp, body := get(t, b, wizardURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Incident Details")
	assert.Contains(t, body, `name="stage" value="1"`)

	// invalid stage 1 re-renders with field errors
	resp, body = post(t, b, wizardURL, stageForm(1, "next", url.Values{"accidentDate": {"2025-03-11"}, "accidentTime": {"10:30"}, "locationType": {"city"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `value="2025-03-11"`)
	assert.Contains(t, body, `class="error"`)

	completeFormStages(t, b, wizardURL)

	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "Damage Evidence")
	assert.Contains(t, body, "No images uploaded yet.")

	// evidence needs two images before Next works
	resp, _ = post(t, b, wizardURL, stageForm(4, "next", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = uploadImages(t, b, wizardURL, "front.jpg", "rear.jpg", "side.jpg")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = post(t, b, wizardURL, stageForm(4, "remove:2", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "front.jpg")
	assert.NotContains(t, body, "side.jpg")

	resp, _ = post(t, b, wizardURL, stageForm(4, "next", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "POL-12345")
	assert.Contains(t, body, "Active")

	resp, _ = post(t, b, wizardURL, stageForm(5, "submit", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "Claim submitted")
	assert.Contains(t, body, "#77")

	// a second submit does not reach the backend again
	resp, _ = post(t, b, wizardURL, url.Values{"action": {"submit"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	fb.mu.Lock()
	assert.Equal(t, 1, fb.processed)
	fb.mu.Unlock()

	resp, _ = post(t, b, wizardURL, url.Values{"action": {"new"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "Incident Details")
}

func TestWizardBackKeepsValues(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")
	wizardURL := srv.URL + wizardPath

	get(t, b, wizardURL)
	resp, _ := post(t, b, wizardURL, stageForm(1, "next", url.Values{"accidentDate": {"2025-03-01"}, "accidentTime": {"10:30"}, "locationType": {"highway"}}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// back from stage 2 with an incomplete form is never blocked
	resp, _ = post(t, b, wizardURL, stageForm(2, "back", url.Values{"policyNumber": {"P"}}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := get(t, b, wizardURL)
	assert.Contains(t, body, "Incident Details")
	assert.Contains(t, body, `value="2025-03-01"`)
}

func TestWizardRepeatedPostKeepsLaterStage(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")
	wizardURL := srv.URL + wizardPath

	get(t, b, wizardURL)
	completeFormStages(t, b, wizardURL)

	// back to vehicle & policy
	resp, _ := post(t, b, wizardURL, stageForm(4, "back", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = post(t, b, wizardURL, stageForm(3, "back", wizardSteps[2]))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// the same stage 2 form arrives twice, as from a double click
	resp, body := post(t, b, wizardURL, stageForm(2, "next", wizardSteps[1]))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, body)
	resp, body = post(t, b, wizardURL, stageForm(2, "next", wizardSteps[1]))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, body)

	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "Accident Specifics")
	assert.Contains(t, body, `name="driverAge" min="18" value="30"`)
	assert.Contains(t, body, `class="chip on"`)

	// a stale back is dropped too
	resp, _ = post(t, b, wizardURL, stageForm(2, "back", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "Accident Specifics")
}

func TestWizardSubmitFailureShowsBackendMessage(t *testing.T) {
	srv, fb := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")
	wizardURL := srv.URL + wizardPath

	advanceToReview(t, b, wizardURL)

	fb.mu.Lock()
	fb.processFailure = "model offline"
	fb.mu.Unlock()

	resp, body := post(t, b, wizardURL, stageForm(5, "submit", nil))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error submitting claim: model offline")
	assert.Contains(t, body, "Submit Claim")
	assert.NotContains(t, body, "Claim submitted")

	// the draft is intact, so a retry goes through
	fb.mu.Lock()
	fb.processFailure = ""
	fb.mu.Unlock()

	resp, _ = post(t, b, wizardURL, stageForm(5, "submit", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = get(t, b, wizardURL)
	assert.Contains(t, body, "#77")

	fb.mu.Lock()
	assert.Equal(t, 2, fb.processed)
	fb.mu.Unlock()
}

func TestWizardUnknownAction(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t)
	signIn(t, b, srv.URL, "user@example.com")

	resp, body := post(t, b, srv.URL+wizardPath, url.Values{"action": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Unknown action.")
}

func uploadImages(t *testing.T, b *http.Client, u string, names ...string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("action", "images"))
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\xff\xd8\xff" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := b.Post(u, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}
