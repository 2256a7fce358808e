package claim

// Status is the lifecycle status of a claim
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusPending        Status = "PENDING"
	StatusAnalyzing      Status = "ANALYZING"
	StatusApproved       Status = "APPROVED"
	StatusRejected       Status = "REJECTED"
	StatusRequiresReview Status = "REQUIRES_REVIEW"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusDraft, StatusPending, StatusAnalyzing, StatusApproved, StatusRejected, StatusRequiresReview}

// IsActive reports whether the claim still awaits a decision
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAnalyzing || s == StatusRequiresReview
}

// Label turns REQUIRES_REVIEW into "REQUIRES REVIEW"
func (s Status) Label() string {
	out := []byte(s)
	for i, b := range out {
		if b == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}

// LocationType of the accident scene
type LocationType string

const (
	LocationCity    LocationType = "city"
	LocationHighway LocationType = "highway"
	LocationRural   LocationType = "rural"
)

var LocationTypes = []LocationType{LocationCity, LocationHighway, LocationRural}

// AccidentType categorises the incident
type AccidentType string

const (
	AccidentCollision         AccidentType = "collision"
	AccidentTheft             AccidentType = "theft"
	AccidentFire              AccidentType = "fire"
	AccidentNaturalDisaster   AccidentType = "natural_disaster"
	AccidentFloodSpill        AccidentType = "flood_spill"
	AccidentSlip              AccidentType = "slip"
	AccidentVehicleFire       AccidentType = "vehicle_fire"
	AccidentWeatherConditions AccidentType = "weather_conditions"
)

var AccidentTypes = []AccidentType{
	AccidentCollision, AccidentTheft, AccidentFire, AccidentNaturalDisaster,
	AccidentFloodSpill, AccidentSlip, AccidentVehicleFire, AccidentWeatherConditions,
}

// VehicleType is sent verbatim as the policy_type form field
type VehicleType string

const (
	VehicleTwoWheeler  VehicleType = "Two Wheeler"
	VehicleFourWheeler VehicleType = "Four Wheeler"
	VehicleTruck       VehicleType = "Truck"
	VehicleBus         VehicleType = "Bus"
	VehicleOther       VehicleType = "Other"
)

var VehicleTypes = []VehicleType{VehicleTwoWheeler, VehicleFourWheeler, VehicleTruck, VehicleBus, VehicleOther}

// DamagePart is one side of the vehicle
type DamagePart string

const (
	DamageFront DamagePart = "Damage Front"
	DamageRear  DamagePart = "Damage Rear"
	DamageLeft  DamagePart = "Damage Left"
	DamageRight DamagePart = "Damage Right"
)

var DamageParts = []DamagePart{DamageFront, DamageRear, DamageLeft, DamageRight}

// YesNo is the form representation of the four boolean flags
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// Bool converts the answer; anything but "yes" is false
func (y YesNo) Bool() bool { return y == Yes }
