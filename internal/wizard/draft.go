package wizard

import (
	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/ports"
)

// IncidentForm is stage 1
type IncidentForm struct {
	AccidentDate string             `json:"accidentDate" validate:"required,isodate,notfuture"`
	AccidentTime string             `json:"accidentTime" validate:"required"`
	LocationType claim.LocationType `json:"locationType" validate:"locationtype"`
	Description  string             `json:"description,omitempty" validate:"max=1000"`
}

// VehicleForm is stage 2
type VehicleForm struct {
	PolicyNumber       string            `json:"policyNumber" validate:"min=5"`
	PolicyExpiryDate   string            `json:"policyExpiryDate" validate:"required,isodate"`
	CarAge             *int              `json:"carAge" validate:"required,min=0,max=20"`
	RegistrationNumber string            `json:"registrationNumber" validate:"min=4"`
	InsurerName        string            `json:"insurerName" validate:"min=2,knowninsurer"`
	VehicleType        claim.VehicleType `json:"vehicleType" validate:"vehicletype"`
}

// SpecificsForm is stage 3
type SpecificsForm struct {
	AccidentType       claim.AccidentType `json:"accidentType" validate:"accidenttype"`
	DamageParts        []claim.DamagePart `json:"damageParts" validate:"min=1,dive,damagepart"`
	PreviousClaims     *int               `json:"previousClaims" validate:"required,min=0"`
	PoliceReport       claim.YesNo        `json:"policeReport" validate:"yesno"`
	DriverAtFault      claim.YesNo        `json:"driverAtFault" validate:"yesno"`
	DriverAge          *int               `json:"driverAge" validate:"required,min=18"`
	DriverLicenseValid claim.YesNo        `json:"driverLicenseValid" validate:"yesno"`
	AlcoholIntoxicated claim.YesNo        `json:"alcoholIntoxicated" validate:"yesno"`
}

// Expiry is derived from the accident and policy expiry dates
type Expiry struct {
	DaysToExpiry int
	Claimable    bool
}

// Draft accumulates everything entered across stages. It is never persisted.
type Draft struct {
	ID        core.DraftID
	Incident  IncidentForm
	Vehicle   VehicleForm
	Specifics SpecificsForm
	Images    []ports.Upload
	// Expiry is nil until both dates parse
	Expiry *Expiry
}

func newDraft() *Draft {
	zero := 0
	return &Draft{
		ID:        core.NewDraftID(),
		Specifics: SpecificsForm{PreviousClaims: &zero, DamageParts: []claim.DamagePart{}},
	}
}

// recomputeExpiry refreshes the derived field. Called after any date mutation from any stage.
func (d *Draft) recomputeExpiry() {
	d.Expiry = ComputeExpiry(d.Incident.AccidentDate, d.Vehicle.PolicyExpiryDate)
}

// ComputeExpiry returns ceil((expiry - accident) / day), or nil if either date is missing or malformed.
// A policy expiring on the accident date gives 0 days and is not claimable.
func ComputeExpiry(accidentDate, expiryDate string) *Expiry {
	if accidentDate == "" || expiryDate == "" {
		return nil
	}
	acc, err := core.ParseDate(accidentDate)
	if err != nil {
		return nil
	}
	exp, err := core.ParseDate(expiryDate)
	if err != nil {
		return nil
	}
	days := core.DaysBetween(acc, exp)
	return &Expiry{DaysToExpiry: days, Claimable: days > 0}
}

// ToggleDamagePart adds p if absent, removes it if present. Order of the rest is kept.
func (d *Draft) ToggleDamagePart(p claim.DamagePart) {
	for i, existing := range d.Specifics.DamageParts {
		if existing == p {
			d.Specifics.DamageParts = append(d.Specifics.DamageParts[:i:i], d.Specifics.DamageParts[i+1:]...)
			return
		}
	}
	d.Specifics.DamageParts = append(d.Specifics.DamageParts, p)
}

// clone returns a deep copy safe to hand to callers
func (d *Draft) clone() Draft {
	out := *d
	out.Specifics.DamageParts = append([]claim.DamagePart(nil), d.Specifics.DamageParts...)
	out.Images = append([]ports.Upload(nil), d.Images...)
	if d.Vehicle.CarAge != nil {
		v := *d.Vehicle.CarAge
		out.Vehicle.CarAge = &v
	}
	if d.Specifics.PreviousClaims != nil {
		v := *d.Specifics.PreviousClaims
		out.Specifics.PreviousClaims = &v
	}
	if d.Specifics.DriverAge != nil {
		v := *d.Specifics.DriverAge
		out.Specifics.DriverAge = &v
	}
	if d.Expiry != nil {
		e := *d.Expiry
		out.Expiry = &e
	}
	return out
}
