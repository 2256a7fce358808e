package claim

import "time"

// Claim is a submitted insurance claim as the backend returns it
type Claim struct {
	ID                ID                `json:"id"`
	UserID            ID                `json:"userId"`
	UserName          string            `json:"userName,omitempty"`
	Status            Status            `json:"status"`
	CreatedAt         string            `json:"createdAt"`
	PolicyNumber      string            `json:"policyNumber"`
	PolicyExpiryDate  string            `json:"policyExpiryDate,omitempty"`
	DaysToExpiry      int               `json:"daysToExpiry,omitempty"`
	ClaimablePolicy   bool              `json:"claimablePolicy,omitempty"`
	IncidentDetails   IncidentDetails   `json:"incidentDetails"`
	VehicleDetails    VehicleDetails    `json:"vehicleDetails"`
	AccidentSpecifics AccidentSpecifics `json:"accidentSpecifics"`
	Images            []Image           `json:"images"`
	AIAnalysis        *AIAnalysis       `json:"aiAnalysis,omitempty"`
}

// Created parses CreatedAt. The backend emits ISO-8601 with or without zone.
func (c Claim) Created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, c.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type IncidentDetails struct {
	AccidentDate string       `json:"accidentDate"`
	AccidentTime string       `json:"accidentTime"`
	LocationType LocationType `json:"locationType"`
	Description  string       `json:"description,omitempty"`
}

type VehicleDetails struct {
	RegistrationNumber string      `json:"registrationNumber"`
	InsurerName        string      `json:"insurerName"`
	VehicleType        VehicleType `json:"vehicleType"`
	CarAge             int         `json:"carAge"`
	DriverAge          int         `json:"driverAge,omitempty"`
	PolicyNumber       string      `json:"policyNumber,omitempty"`
}

type AccidentSpecifics struct {
	AccidentType       AccidentType `json:"accidentType"`
	DamageParts        []DamagePart `json:"damageParts"`
	PreviousClaims     int          `json:"previousClaims"`
	PoliceReport       bool         `json:"policeReport"`
	DriverAtFault      bool         `json:"driverAtFault"`
	DriverAge          int          `json:"driverAge,omitempty"`
	DriverLicenseValid bool         `json:"driverLicenseValid"`
	AlcoholIntoxicated bool         `json:"alcoholIntoxicated"`
}

type Image struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// AIAnalysis is the assessment attached to a processed claim
type AIAnalysis struct {
	Confidence          float64    `json:"confidence"`
	DamagePercent       float64    `json:"damagePercent"`
	ApprovalProbability float64    `json:"approvalProbability"`
	Explanations        StringList `json:"explanations"`
	RAGMatches          []RAGMatch `json:"ragMatches"`
	Severity            string     `json:"severity,omitempty"`
	EvidenceStrength    string     `json:"evidence_strength,omitempty"`
	Claimability        string     `json:"claimability,omitempty"`
	AnnotatedImages     StringList `json:"annotated_images,omitempty"`
	WorstDamage         string     `json:"worst_damage,omitempty"`
	DamageDetected      bool       `json:"damage_detected,omitempty"`
	Explanation         string     `json:"explanation,omitempty"`
	VisualAnalysis      string     `json:"visual_analysis,omitempty"`
	EvidenceList        StringList `json:"evidence_list,omitempty"`
}

// RAGMatch is one policy-clause hit from retrieval
type RAGMatch struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Score  float64 `json:"score"`
}
