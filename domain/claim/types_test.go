package claim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var c struct {
		ID     ID `json:"id"`
		UserID ID `json:"userId"`
		Other  ID `json:"other"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "userId": "7", "other": null}`), &c))

	assert.Equal(t, ID("42"), c.ID)
	assert.Equal(t, ID("7"), c.UserID)
	assert.True(t, c.Other.IsEmpty())

	out, err := json.Marshal(c.ID)
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(out))
}

func TestStringListAcceptsSingleString(t *testing.T) {
	var a AIAnalysis
	require.NoError(t, json.Unmarshal([]byte(`{"explanations": "dent on bumper", "evidence_list": ["photo 1", "photo 2"]}`), &a))

	assert.Equal(t, StringList{"dent on bumper"}, a.Explanations)
	assert.Equal(t, StringList{"photo 1", "photo 2"}, a.EvidenceList)
}

func TestDecodeBackendClaim(t *testing.T) {
	raw := `{
		"id": 3,
		"createdAt": "2025-02-01T10:20:30.123456",
		"status": "REQUIRES_REVIEW",
		"userId": "11",
		"policyNumber": "POL-12345",
		"vehicleDetails": {"registrationNumber": "KA01AB1234", "insurerName": "acme_general", "vehicleType": "Four Wheeler", "carAge": 4, "driverAge": 30},
		"incidentDetails": {"accidentDate": "2025-01-30", "accidentTime": "14:00", "locationType": "city"},
		"accidentSpecifics": {"accidentType": "collision", "damageParts": ["Damage Front"], "previousClaims": 0, "policeReport": true},
		"images": [{"url": "http://localhost:8000/uploads/a.jpg"}],
		"aiAnalysis": {"confidence": 0.82, "damagePercent": 82, "approvalProbability": 0.6, "explanations": [], "ragMatches": [{"text": "clause", "source": "policy.pdf", "page": 4, "score": 0.95}]}
	}`

	var c Claim
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, ID("3"), c.ID)
	assert.True(t, c.Status.IsActive())
	assert.Equal(t, "REQUIRES REVIEW", c.Status.Label())
	assert.Equal(t, []DamagePart{DamageFront}, c.AccidentSpecifics.DamageParts)
	require.NotNil(t, c.AIAnalysis)
	assert.Equal(t, 4, c.AIAnalysis.RAGMatches[0].Page)

	created, ok := c.Created()
	require.True(t, ok)
	assert.Equal(t, 2025, created.Year())
}

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/dashboard/company", RoleCompany.Home())
	assert.Equal(t, "/dashboard", RoleUser.Home())
	assert.Equal(t, "/dashboard", Role("admin").Home())
	assert.False(t, Identity{ID: "1", Role: "admin"}.Valid())
	assert.False(t, Identity{Role: RoleUser}.Valid())
	assert.True(t, Identity{ID: "1", Role: RoleUser}.Valid())
}

func TestParseAssessment(t *testing.T) {
	a := ParseAssessment([]byte(`{"damage_detected": true, "severity": "moderate", "confidence": "0.87", "claimability": "Claimable", "claimability_bool": true, "reasoning": ["dent", "scratch"], "annotated_images": "/uploads/x.jpg"}`))
	require.NotNil(t, a)

	assert.True(t, a.DamageDetected)
	assert.Equal(t, "moderate", a.Severity)
	assert.InDelta(t, 0.87, a.Confidence, 1e-9)
	assert.True(t, a.Claimable)
	assert.Equal(t, []string{"dent", "scratch"}, a.Reasoning)
	assert.Equal(t, []string{"/uploads/x.jpg"}, a.AnnotatedImages)

	assert.Nil(t, ParseAssessment(nil))
	assert.Nil(t, ParseAssessment([]byte(`[1,2]`)))
}
