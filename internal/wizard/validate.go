package wizard

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"

	"github.com/go-playground/validator/v10"
)

// messages maps "field.tag" to the text shown beside the field
var messages = map[string]string{
	"accidentDate.required":     "Please select the accident date.",
	"accidentDate.isodate":      "Please select the accident date.",
	"accidentDate.notfuture":    "Accident date cannot be in the future.",
	"accidentTime.required":     "Please enter the time of the accident.",
	"locationType.locationtype": "Please select a location type.",
	"description.max":           "Description is too long (max 1000 characters).",

	"policyNumber.min":          "Policy number must be at least 5 characters long.",
	"policyExpiryDate.required": "Please select the policy expiry date.",
	"policyExpiryDate.isodate":  "Please select the policy expiry date.",
	"carAge.required":           "Please enter the vehicle age.",
	"carAge.min":                "Car age cannot be negative.",
	"carAge.max":                "Car age must be 20 years or less.",
	"registrationNumber.min":    "Please enter a valid vehicle registration number.",
	"insurerName.min":           "Please enter the Insurance Company name.",
	"insurerName.knowninsurer":  "Please select an insurer from the list.",
	"vehicleType.vehicletype":   "Please select a vehicle type.",

	"accidentType.accidenttype": "Please select an accident type.",
	"damageParts.min":           "Please select at least one damaged part.",
	"damageParts.damagepart":    "Please select damaged parts from the list.",
	"previousClaims.required":   "Previous claims must be 0 or more.",
	"previousClaims.min":        "Previous claims must be 0 or more.",
	"driverAge.required":        "Driver must be at least 18 years old.",
	"driverAge.min":             "Driver must be at least 18 years old.",
}

const yesNoMessage = "Please select yes or no."

var indexSuffix = regexp.MustCompile(`\[\d+\]$`)

// Validator runs the per-stage rules. "Today" comes from the clock so tests can pin it.
type Validator struct {
	v     *validator.Validate
	clock core.Clock

	mu       sync.RWMutex
	insurers map[string]struct{}
}

// NewValidator builds the rule set around clock
func NewValidator(clock core.Clock) *Validator {
	if clock == nil {
		clock = core.SystemClock{}
	}
	val := &Validator{
		v:     validator.New(validator.WithRequiredStructEnabled()),
		clock: clock,
	}
	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"isodate":      isISODate,
		"notfuture":    val.notFuture,
		"knowninsurer": val.knownInsurer,
		"locationtype": oneOf(claim.LocationTypes),
		"vehicletype":  oneOf(claim.VehicleTypes),
		"accidenttype": oneOf(claim.AccidentTypes),
		"damagepart":   oneOf(claim.DamageParts),
		"yesno":        oneOf([]claim.YesNo{claim.Yes, claim.No}),
	}
	for tag, fn := range rules {
		if err := val.v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return val
}

// SetInsurers restricts insurerName to list. An empty list disables the check.
func (val *Validator) SetInsurers(list []string) {
	set := make(map[string]struct{}, len(list))
	for _, name := range list {
		set[name] = struct{}{}
	}
	val.mu.Lock()
	val.insurers = set
	val.mu.Unlock()
}

// Stage validates the form of stage s. Evidence and review have no field rules.
func (val *Validator) Stage(s Stage, d *Draft) FieldErrors {
	switch s {
	case StageIncident:
		return val.check(&d.Incident)
	case StageVehicle:
		return val.check(&d.Vehicle)
	case StageSpecifics:
		return val.check(&d.Specifics)
	default:
		return nil
	}
}

// All validates stages 1 to 3 together
func (val *Validator) All(d *Draft) FieldErrors {
	out := FieldErrors{}
	for _, s := range []Stage{StageIncident, StageVehicle, StageSpecifics} {
		out.merge(val.Stage(s, d))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (val *Validator) check(form interface{}) FieldErrors {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_form": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := indexSuffix.ReplaceAllString(fe.Field(), "")
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if tag == "yesno" {
		return yesNoMessage
	}
	return "Invalid value."
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := core.ParseDate(fl.Field().String())
	return err == nil
}

// notFuture accepts today and earlier
func (val *Validator) notFuture(fl validator.FieldLevel) bool {
	d, err := core.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.After(core.Today(val.clock))
}

func (val *Validator) knownInsurer(fl validator.FieldLevel) bool {
	val.mu.RLock()
	defer val.mu.RUnlock()
	if len(val.insurers) == 0 {
		return true
	}
	_, ok := val.insurers[fl.Field().String()]
	return ok
}

func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if string(a) == v {
				return true
			}
		}
		return false
	}
}
