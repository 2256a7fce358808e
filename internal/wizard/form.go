package wizard

import (
	"net/url"
	"strconv"
	"strings"

	"claimsportal/domain/claim"
)

var numberMessages = map[string]string{
	"carAge":         "Car age must be a number.",
	"previousClaims": "Previous claims must be a number.",
	"driverAge":      "Driver age must be a number.",
}

// applyForm copies submitted form values into the draft's stage form. Fields absent from values are
// cleared, matching a full form post. Only number parsing can fail here; rule checks happen in Next.
func applyForm(d *Draft, s Stage, values url.Values) FieldErrors {
	errs := FieldErrors{}
	get := func(k string) string { return strings.TrimSpace(values.Get(k)) }

	switch s {
	case StageIncident:
		d.Incident = IncidentForm{
			AccidentDate: get("accidentDate"),
			AccidentTime: get("accidentTime"),
			LocationType: claim.LocationType(get("locationType")),
			Description:  values.Get("description"),
		}
	case StageVehicle:
		d.Vehicle = VehicleForm{
			PolicyNumber:       get("policyNumber"),
			PolicyExpiryDate:   get("policyExpiryDate"),
			CarAge:             parseInt(errs, "carAge", get("carAge")),
			RegistrationNumber: get("registrationNumber"),
			InsurerName:        get("insurerName"),
			VehicleType:        claim.VehicleType(get("vehicleType")),
		}
	case StageSpecifics:
		parts := []claim.DamagePart{}
		for _, p := range values["damageParts"] {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, claim.DamagePart(p))
			}
		}
		d.Specifics = SpecificsForm{
			AccidentType:       claim.AccidentType(get("accidentType")),
			DamageParts:        parts,
			PreviousClaims:     parseInt(errs, "previousClaims", get("previousClaims")),
			PoliceReport:       claim.YesNo(get("policeReport")),
			DriverAtFault:      claim.YesNo(get("driverAtFault")),
			DriverAge:          parseInt(errs, "driverAge", get("driverAge")),
			DriverLicenseValid: claim.YesNo(get("driverLicenseValid")),
			AlcoholIntoxicated: claim.YesNo(get("alcoholIntoxicated")),
		}
	}
	d.recomputeExpiry()

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// parseInt returns nil for an empty value so the required rule reports it
func parseInt(errs FieldErrors, field, raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = numberMessages[field]
		return nil
	}
	return &n
}

// FormValues renders a stage form back into url.Values for redisplay
func FormValues(d Draft, s Stage) url.Values {
	v := url.Values{}
	itoa := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}
	switch s {
	case StageIncident:
		v.Set("accidentDate", d.Incident.AccidentDate)
		v.Set("accidentTime", d.Incident.AccidentTime)
		v.Set("locationType", string(d.Incident.LocationType))
		v.Set("description", d.Incident.Description)
	case StageVehicle:
		v.Set("policyNumber", d.Vehicle.PolicyNumber)
		v.Set("policyExpiryDate", d.Vehicle.PolicyExpiryDate)
		v.Set("carAge", itoa(d.Vehicle.CarAge))
		v.Set("registrationNumber", d.Vehicle.RegistrationNumber)
		v.Set("insurerName", d.Vehicle.InsurerName)
		v.Set("vehicleType", string(d.Vehicle.VehicleType))
	case StageSpecifics:
		v.Set("accidentType", string(d.Specifics.AccidentType))
		for _, p := range d.Specifics.DamageParts {
			v.Add("damageParts", string(p))
		}
		v.Set("previousClaims", itoa(d.Specifics.PreviousClaims))
		v.Set("policeReport", string(d.Specifics.PoliceReport))
		v.Set("driverAtFault", string(d.Specifics.DriverAtFault))
		v.Set("driverAge", itoa(d.Specifics.DriverAge))
		v.Set("driverLicenseValid", string(d.Specifics.DriverLicenseValid))
		v.Set("alcoholIntoxicated", string(d.Specifics.AlcoholIntoxicated))
	}
	return v
}
