package wizard

import (
	"encoding/json"
	"strings"

	"claimsportal/domain/claim"
	"claimsportal/internal/errors"
	"claimsportal/ports"
)

const defaultDescription = "No description provided"

// SurveyResult is the survey_result form field
type SurveyResult struct {
	IncidentDetails   SurveyIncident  `json:"incidentDetails"`
	VehicleDetails    SurveyVehicle   `json:"vehicleDetails"`
	AccidentSpecifics SurveySpecifics `json:"accidentSpecifics"`
	Computed          SurveyComputed  `json:"computed"`
}

type SurveyIncident struct {
	AccidentDate string             `json:"accidentDate"`
	AccidentTime string             `json:"accidentTime"`
	LocationType claim.LocationType `json:"locationType"`
}

// SurveyVehicle carries driverAge and policyNumber too; the backend reads them from here
type SurveyVehicle struct {
	RegistrationNumber string            `json:"registrationNumber"`
	InsurerName        string            `json:"insurerName"`
	VehicleType        claim.VehicleType `json:"vehicleType"`
	CarAge             *int              `json:"carAge"`
	DriverAge          *int              `json:"driverAge"`
	PolicyNumber       string            `json:"policyNumber"`
}

type SurveySpecifics struct {
	AccidentType       claim.AccidentType `json:"accidentType"`
	DamageParts        []claim.DamagePart `json:"damageParts"`
	PreviousClaims     *int               `json:"previousClaims"`
	PoliceReport       bool               `json:"policeReport"`
	DriverAtFault      bool               `json:"driverAtFault"`
	DriverLicenseValid bool               `json:"driverLicenseValid"`
	AlcoholIntoxicated bool               `json:"alcoholIntoxicated"`
}

// SurveyComputed carries the derived expiry; days_to_expiry is null when it could not be computed
type SurveyComputed struct {
	DaysToExpiry    *int `json:"days_to_expiry"`
	ClaimablePolicy bool `json:"claimable_policy"`
}

// BuildSurvey maps the draft into the survey_result document
func BuildSurvey(d *Draft) SurveyResult {
	parts := d.Specifics.DamageParts
	if parts == nil {
		parts = []claim.DamagePart{}
	}
	s := SurveyResult{
		IncidentDetails: SurveyIncident{
			AccidentDate: d.Incident.AccidentDate,
			AccidentTime: d.Incident.AccidentTime,
			LocationType: d.Incident.LocationType,
		},
		VehicleDetails: SurveyVehicle{
			RegistrationNumber: d.Vehicle.RegistrationNumber,
			InsurerName:        d.Vehicle.InsurerName,
			VehicleType:        d.Vehicle.VehicleType,
			CarAge:             d.Vehicle.CarAge,
			DriverAge:          d.Specifics.DriverAge,
			PolicyNumber:       d.Vehicle.PolicyNumber,
		},
		AccidentSpecifics: SurveySpecifics{
			AccidentType:       d.Specifics.AccidentType,
			DamageParts:        parts,
			PreviousClaims:     d.Specifics.PreviousClaims,
			PoliceReport:       d.Specifics.PoliceReport.Bool(),
			DriverAtFault:      d.Specifics.DriverAtFault.Bool(),
			DriverLicenseValid: d.Specifics.DriverLicenseValid.Bool(),
			AlcoholIntoxicated: d.Specifics.AlcoholIntoxicated.Bool(),
		},
	}
	if d.Expiry != nil {
		days := d.Expiry.DaysToExpiry
		s.Computed = SurveyComputed{DaysToExpiry: &days, ClaimablePolicy: days > 0}
	}
	return s
}

// BuildSubmission assembles the multipart payload for the draft
func BuildSubmission(d *Draft) (*ports.ClaimSubmission, error) {
	if len(d.Images) < MinImages {
		return nil, ErrNotEnoughImages
	}
	survey, err := json.Marshal(BuildSurvey(d))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode survey result")
	}
	desc := d.Incident.Description
	if strings.TrimSpace(desc) == "" {
		desc = defaultDescription
	}
	return &ports.ClaimSubmission{
		Description:  desc,
		Company:      d.Vehicle.InsurerName,
		PolicyType:   string(d.Vehicle.VehicleType),
		SurveyResult: survey,
		Files:        append([]ports.Upload(nil), d.Images...),
	}, nil
}
